package response

// Error is the body every non-2xx users API response carries.
type Error struct {
	Message string `json:"message"`
}

// Deleted confirms a delete.
type Deleted struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Fail 失败响应（可以传自定义 msg 覆盖默认）
func Fail(status int, customMsg string) Error {
	if customMsg != "" {
		return Error{Message: customMsg}
	}
	return Error{Message: MessageFor(status)}
}
