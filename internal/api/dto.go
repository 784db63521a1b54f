package api

import "sheet-news/backend/internal/stocks"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BatchRequest lists the stock names to look up together.
type BatchRequest struct {
	Stocks []string `json:"stocks" binding:"required,min=1"`
}

// BatchResponse omits errors when every lookup succeeded.
type BatchResponse struct {
	Results map[string]*stocks.StockNewsResult `json:"results"`
	Errors  map[string]string                  `json:"errors,omitempty"`
}

func newBatchResponse(batch stocks.BatchResult) BatchResponse {
	resp := BatchResponse{Results: batch.Results, Errors: batch.Errors}
	if resp.Results == nil {
		resp.Results = map[string]*stocks.StockNewsResult{}
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	return resp
}
