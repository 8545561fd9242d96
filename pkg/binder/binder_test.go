package binder

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	RootPath string `json:"root_path" mod:"trim" validate:"abspath"`
	Template string `json:"template"  validate:"pathtemplate"`
	Limit    int    `json:"limit"     validate:"max=100"`
}

var (
	goodJSON             = `{"root_path":" /library/audiobooks "}`
	unknownFieldsErrJSON = `{"root_path":"/library","foo":"bar"}`
	typeErrJSON          = `{"root_path":123}`
	validationErrJSON    = `{"root_path":"library/audiobooks"}`
	templateErrJSON      = `{"template":"{author_sort/{title}"}`
	limitErrJSON         = `{"limit":500}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"root_path" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "/library/audiobooks", p.RootPath)
	})

	t.Run("rejects relative paths for abspath fields", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"root_path" must be an absolute path`)
	})

	t.Run("rejects unbalanced naming templates", func(tt *testing.T) {
		c := newContext(templateErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"template" is not a valid naming template`)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(limitErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"limit" must be less than or equal to 100`)
	})
}

func TestPathTemplateValidator(t *testing.T) {
	t.Parallel()

	b, err := New()
	require.NoError(t, err)

	cases := []struct {
		template string
		valid    bool
	}{
		{"{author_sort}/{title} ({year})", true},
		{"{title}.{ext}", true},
		{"", true},
		{"/absolute/{title}", false},
		{"../{title}", false},
		{"{title", false},
	}

	for _, tt := range cases {
		p := struct {
			Template string `json:"template" validate:"pathtemplate"`
		}{Template: tt.template}
		err := b.validate.Struct(&p)
		if tt.valid {
			assert.NoError(t, err, tt.template)
		} else {
			assert.Error(t, err, tt.template)
		}
	}
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
