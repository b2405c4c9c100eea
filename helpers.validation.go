package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxRequestBodySize caps the size of a decoded request body to 1MB.
const maxRequestBodySize = 1 << 20

// CreateSellerInput is the payload of a seller creation request.
type CreateSellerInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"e_mail" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,max=100"`
}

// UpdateSellerInput is the payload of a seller update request. Extra keys
// like `password` or `seller_id` are accepted by the decoder and dropped.
type UpdateSellerInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"e_mail" validate:"required,max=100"`
}

// CreateBookInput is the payload of a book creation request.
// Numbers are pointers so a missing key differs from a zero value.
type CreateBookInput struct {
	Title    string `json:"title" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	Pages    *int   `json:"count_pages" validate:"required,gte=0,lte=2147483647"`
	Year     *int   `json:"year" validate:"required,gte=-2147483648,lte=2147483647"`
	SellerID *int64 `json:"seller_id" validate:"required"`
}

// UpdateBookInput is the payload of a book full replacement request.
type UpdateBookInput struct {
	Title    string `json:"title" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	Pages    *int   `json:"pages" validate:"required,gte=0,lte=2147483647"`
	Year     *int   `json:"year" validate:"required,gte=-2147483648,lte=2147483647"`
	SellerID *int64 `json:"seller_id" validate:"required"`
}

// ValidationErrors maps an input field name to the reason it was rejected.
type ValidationErrors map[string]string

func (ve ValidationErrors) Error() string {
	fields := make([]string, 0, len(ve))
	for field := range ve {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, field+" "+ve[field])
	}
	return strings.Join(msgs, "; ")
}

// InputValidator checks the shape of incoming payloads before they
// are turned into domain entities.
type InputValidator struct {
	v *validator.Validate
}

// NewInputValidator provides a validator reporting fields by their json names.
func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InputValidator{v: v}
}

func (iv *InputValidator) check(input interface{}) error {
	err := iv.v.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verrs := ValidationErrors{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			verrs[fe.Field()] = "is required"
		case "max":
			verrs[fe.Field()] = "must be at most " + fe.Param() + " characters long"
		case "gte":
			verrs[fe.Field()] = "must be greater than or equal to " + fe.Param()
		case "lte":
			verrs[fe.Field()] = "must be less than or equal to " + fe.Param()
		default:
			verrs[fe.Field()] = "is invalid"
		}
	}
	return verrs
}

// ValidateCreateSellerInput turns a creation payload into a new seller.
func (iv *InputValidator) ValidateCreateSellerInput(in CreateSellerInput) (Seller, error) {
	if err := iv.check(in); err != nil {
		return Seller{}, err
	}
	return Seller{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
	}, nil
}

// ValidateUpdateSellerInput turns an update payload into the replacement
// fields of a seller. Identity and password are never part of it.
func (iv *InputValidator) ValidateUpdateSellerInput(in UpdateSellerInput) (Seller, error) {
	if err := iv.check(in); err != nil {
		return Seller{}, err
	}
	return Seller{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
	}, nil
}

// ValidateCreateBookInput turns a creation payload into a new book. The
// publication year rule is applied here, before any storage access.
func (iv *InputValidator) ValidateCreateBookInput(in CreateBookInput) (Book, error) {
	if err := iv.check(in); err != nil {
		return Book{}, err
	}
	if err := CheckPublicationYear(*in.Year); err != nil {
		return Book{}, err
	}
	return Book{
		Title:    in.Title,
		Author:   in.Author,
		Pages:    *in.Pages,
		Year:     *in.Year,
		SellerID: *in.SellerID,
	}, nil
}

// ValidateUpdateBookInput turns a full replacement payload into book fields.
func (iv *InputValidator) ValidateUpdateBookInput(in UpdateBookInput) (Book, error) {
	if err := iv.check(in); err != nil {
		return Book{}, err
	}
	return Book{
		Title:    in.Title,
		Author:   in.Author,
		Pages:    *in.Pages,
		Year:     *in.Year,
		SellerID: *in.SellerID,
	}, nil
}

// jsonTypeName names the json kind expected for a Go type.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	default:
		return "of a valid type"
	}
}

// decodeStatus answers 422 when the body is json carrying a field of the
// wrong type and 400 when it could not be read at all.
func decodeStatus(err error) int {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// DecodeRequestBody is a helper function to read the json content of a creation or update
// request. It accepts a single json value of at most 1MB.
func DecodeRequestBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body must not be empty")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return ValidationErrors{typeErr.Field: "must be " + jsonTypeName(typeErr.Type)}
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single json value")
	}
	return nil
}
