package response

import "time"

type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Success       bool        `json:"success"`
	StatusMessage string      `json:"status_message,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:      data,
		Success:   true,
		Timestamp: time.Now(),
	}
}

func Error(message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     time.Now(),
	}
}
