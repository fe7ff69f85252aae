package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const maxJSONBodySize = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Message: message}
}

// ToHTTPResponse определяет код ответа и сообщение для клиента.
// Текст неизвестных ошибок наружу не отдаётся.
func ToHTTPResponse(err error) (int, string) {
	var ce *e.ClientError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}

	switch {
	case errors.Is(ce.Kind, e.ErrBadRequest):
		return http.StatusBadRequest, ce.Msg
	case errors.Is(ce.Kind, e.ErrUnauthenticated):
		return http.StatusUnauthorized, ce.Msg
	case errors.Is(ce.Kind, e.ErrPermissionDenied):
		return http.StatusForbidden, ce.Msg
	case errors.Is(ce.Kind, e.ErrNotFound):
		return http.StatusNotFound, ce.Msg
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

// respondError пишет ответ с ошибкой. Непредвиденные ошибки логируются целиком.
func respondError(log logger.Logger, w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		log.Errorf(err, "request failed")
	} else {
		log.Debugf("request rejected: %v", err)
	}

	WriteError(w, err)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeJSON читает тело запроса в dst и проверяет теги validate.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return e.Wrap(whereami.WhereAmI(), e.ErrInvalidJSON)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.NewValidationError("Request body too large"))
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrInvalidJSON, err))
	}

	if err := validate.Struct(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), validationError(err))
	}

	return nil
}

// validationError превращает первую ошибку валидатора в сообщение для клиента.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return e.NewValidationError("%s is required", fe.Field())
	case "email":
		return e.NewValidationError("%s must be a valid email", fe.Field())
	case "max":
		return e.NewValidationError("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return e.NewValidationError("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return e.NewValidationError("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return e.NewValidationError("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "uuid":
		return e.NewValidationError("%s must be a valid id", fe.Field())
	default:
		return e.NewValidationError("%s is invalid", fe.Field())
	}
}

// priceToCents переводит цену в копейки.
// Отрицательные цены, больше двух знаков после запятой и суммы больше 1 млрд отклоняются.
func priceToCents(d decimal.Decimal) (int64, error) {
	maxPrice := decimal.NewFromInt(1_000_000_000)

	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if !d.Equal(d.Truncate(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Shift(2).IntPart(), nil
}

func centsToPrice(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Price сумма в копейках, в JSON пишется числом с двумя знаками.
type Price int64

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(centsToPrice(int64(p)).StringFixed(2)), nil
}

// parseIDParam разбирает идентификатор из пути. Некорректный id означает, что ресурса нет.
func parseIDParam(r *http.Request, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, e.Wrap(fmt.Sprintf("id=%q", chi.URLParam(r, "id")), notFound)
	}

	return id, nil
}

// parseIntQuery читает необязательный целочисленный параметр запроса.
func parseIntQuery(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Wrap(key, e.ErrInvalidPagination)
	}

	return v, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrExpectedMultipart, err))
	}

	return nil
}

// parseImage читает единственный файл формы. Тип определяется по содержимому, а не по заголовку.
func parseImage(files []*multipart.FileHeader, maxSize int64) (*usecase.ProductImage, error) {
	if len(files) == 0 {
		return nil, e.ErrNoImages
	}

	fh := files[0]
	if maxSize > 0 && fh.Size > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(data) == 0 {
		return nil, e.ErrNoImages
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}
