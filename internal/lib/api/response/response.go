package response

// Response is the JSON envelope returned by every API handler.
type Response struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

const (
	StatusOk    = "success"
	StatusError = "error"
)

func Ok(data interface{}) Response {
	return Response{
		Status: StatusOk,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}
