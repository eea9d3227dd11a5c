package utils

import (
	"encoding/json"
	"fmt"

	httpError "repair-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

// Result is the envelope every usecase returns.
type Result struct {
	Data  interface{}
	Error interface{}
}

type responseBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
}

type errorBody struct {
	Success      bool   `json:"success"`
	Code         int    `json:"code"`
	ResponseCode string `json:"responseCode"`
	Message      string `json:"message"`
}

func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(responseBody{
		Success: true,
		Message: message,
		Code:    code,
		Data:    data,
	})
}

func ResponseError(err interface{}, ctx *fiber.Ctx) error {
	if commonErr, ok := err.(*httpError.CommonError); ok {
		return ctx.Status(commonErr.Code).JSON(errorBody{
			Success:      false,
			Code:         commonErr.Code,
			ResponseCode: commonErr.ResponseCode,
			Message:      commonErr.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(errorBody{
		Success:      false,
		Code:         fiber.StatusInternalServerError,
		ResponseCode: "INTERNAL_SERVER_ERROR",
		Message:      fmt.Sprintf("%v", err),
	})
}

// ConvertString marshals any value for log meta fields.
func ConvertString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case error:
		return t.Error()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
