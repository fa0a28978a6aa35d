package binder

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
)

// Context keys a route can set to relax binding.
const (
	AllowEmptyBodyKey     = "binder.allow_empty_body"
	AllowUnknownFieldsKey = "binder.allow_unknown_fields"
)

// formFilesField is the struct field multipart uploads are bound into. It
// must be a map[string]*multipart.FileHeader.
const formFilesField = "FormFiles"

var unknownFieldRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder implements echo.Binder. Request data is decoded into the target
// struct, normalized by mold `mod` tags, filled from `default` tags and then
// checked against `validate` tags.
type Binder struct {
	query    *schema.Decoder
	form     *schema.Decoder
	conform  *mold.Transformer
	validate *validator.Validate
}

// New builds a Binder with the custom validators registered.
func New() (*Binder, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	if err := validate.RegisterValidation("url", urlValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{
		query:    newDecoder("query"),
		form:     newDecoder("form"),
		conform:  modifiers.New(),
		validate: validate,
	}, nil
}

func newDecoder(tag string) *schema.Decoder {
	dec := schema.NewDecoder()
	dec.SetAliasTag(tag)
	return dec
}

// jsonFieldName makes validation messages use the wire name of a field.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Bind decodes the request into i and validates it.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	var err error
	switch {
	case req.ContentLength > 0:
		err = b.bindBody(i, c)
	case req.Method == http.MethodGet || req.Method == http.MethodDelete:
		err = b.decodeValues(c, i, c.QueryParams(), b.query)
	case !flag(c, AllowEmptyBodyKey):
		err = errcodes.EmptyRequestBody()
	}
	if err != nil {
		return err
	}

	return b.check(c, i)
}

func (b *Binder) bindBody(i interface{}, c echo.Context) error {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		return b.bindJSON(i, c)
	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		if err := b.bindForm(i, c); err != nil {
			return err
		}
		return bindFiles(i, c)
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm):
		return b.bindForm(i, c)
	default:
		return errcodes.UnsupportedMediaType()
	}
}

func (b *Binder) bindJSON(i interface{}, c echo.Context) error {
	body := c.Request().Body
	defer body.Close()

	dec := json.NewDecoder(body)
	if !flag(c, AllowUnknownFieldsKey) {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(i)
	if err == nil {
		return nil
	}

	if m := unknownFieldRE.FindStringSubmatch(err.Error()); len(m) > 1 {
		return errcodes.UnknownParameter(m[1])
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
	}

	logger.FromEchoContext(c).Err(err).Warn("undecodable json payload")
	return errcodes.MalformedPayload()
}

func (b *Binder) bindForm(i interface{}, c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return errcodes.MalformedPayload()
	}
	return b.decodeValues(c, i, values, b.form)
}

// bindFiles stores the first file of every multipart part in the target's
// FormFiles map. Targets without that field ignore uploaded files.
func bindFiles(i interface{}, c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errors.WithStack(err)
	}

	field := reflect.ValueOf(i).Elem().FieldByName(formFilesField)
	if !field.IsValid() || !field.CanSet() {
		return nil
	}

	files := map[string]*multipart.FileHeader{}
	for key, headers := range form.File {
		if len(headers) > 0 {
			files[key] = headers[0]
		}
	}
	if len(files) > 0 {
		field.Set(reflect.ValueOf(files))
	}
	return nil
}

// decodeValues decodes query or form values. Unknown keys are rejected unless
// the route set AllowUnknownFieldsKey; the known keys are decoded either way.
func (b *Binder) decodeValues(c echo.Context, i interface{}, values url.Values, dec *schema.Decoder) error {
	err := dec.Decode(i, values)
	if err == nil {
		return nil
	}

	multi, ok := err.(schema.MultiError)
	if !ok {
		return errors.WithStack(err)
	}
	allowUnknown := flag(c, AllowUnknownFieldsKey)
	for _, fieldErr := range multi {
		switch e := fieldErr.(type) {
		case schema.ConversionError:
			return errcodes.ValidationTypeError(formatSchemaConversionError(e))
		case schema.UnknownKeyError:
			if !allowUnknown {
				return errcodes.UnknownParameter(e.Key)
			}
		default:
			return errors.WithStack(err)
		}
	}
	return nil
}

// check runs the mod, default and validate passes over a decoded payload.
func (b *Binder) check(c echo.Context, i interface{}) error {
	if err := b.conform.Struct(c.Request().Context(), i); err != nil {
		return errors.WithStack(err)
	}
	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	err := b.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.WithStack(err)
	}
	return errcodes.ValidationError(formatValidationError(verrs[0]))
}

func flag(c echo.Context, key string) bool {
	v, _ := c.Get(key).(bool)
	return v
}
