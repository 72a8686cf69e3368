package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/chazu/caliper/pkg/geom"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

const (
	msgValidation = "validation failed"
	msgInternal   = "unexpected error occurred"
)

var tagNamesOnce sync.Once

// registerTagNames makes validation errors report JSON field names.
func registerTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindError reports a request that failed to decode or validate.
func bindError(c *gin.Context, err error) {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		syntax  *json.SyntaxError
	)
	resp := ErrorResponse{Error: msgValidation}
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: describe(fe),
			})
		}
	case errors.As(err, &typeErr):
		resp.Fields = []FieldError{{
			Field:   typeErr.Field,
			Message: "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
		}}
	case errors.As(err, &syntax):
		resp.Fields = []FieldError{{Field: "body", Message: "malformed JSON: " + syntax.Error()}}
	default:
		resp.Fields = []FieldError{{Field: "body", Message: err.Error()}}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// fieldPath drops the request type from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	case "gte":
		return "must be >= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}

// geometryError reports degenerate geometry as a client error and
// anything else generically.
func geometryError(c *gin.Context, err error) {
	if errors.Is(err, geom.ErrDegenerateInput) || errors.Is(err, geom.ErrInvalidPolygon) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	internalError(c, err)
}

func internalError(c *gin.Context, err error) {
	requestLogger(c).Error("request failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
}
