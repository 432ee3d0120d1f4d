package handlers

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// The gateway contract is lenient: an absent, empty or unparseable JSON body
// reads as an empty object. A request only ever fails on what it is missing,
// never on how it was framed.

// DecodePayload reads the request body as a free-form JSON object.
func DecodePayload(ctx *gin.Context) map[string]any {
	payload := map[string]any{}

	body, err := io.ReadAll(ctx.Request.Body)

	if err != nil || len(body) == 0 {
		return payload
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return map[string]any{}
	}

	return payload
}

// BindLenient decodes the body into out (empty struct on any decode failure)
// and then checks the struct's validate tags. On a failed check it writes the
// 400 and reports false.
func BindLenient(ctx *gin.Context, out interface{}) bool {
	body, err := io.ReadAll(ctx.Request.Body)

	if err == nil && len(body) > 0 {
		// a malformed body leaves out at its zero value
		_ = json.Unmarshal(body, out)
	}

	if err := validate.Struct(out); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			RespondBadRequest(ctx, "Missing fields")
			return false
		}

		RespondInternal(ctx, "Could not read request")
		return false
	}

	return true
}
