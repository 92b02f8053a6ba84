package mvc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/property"
)

type mockPropertyMapper struct {
	mock.Mock
}

func (m *mockPropertyMapper) SetTarget(target property.Target) {
	m.Called(target)
}

func (m *mockPropertyMapper) RegisterFilter(filter property.Filter, propertyName string) {
	m.Called(filter, propertyName)
}

func (m *mockPropertyMapper) RegisterPropertyEditor(editor property.PropertyEditor, propertyName, format string) {
	m.Called(editor, propertyName, format)
}

func (m *mockPropertyMapper) RegisterValidator(validator property.Validator) {
	m.Called(validator)
}

func (m *mockPropertyMapper) SetAllowedProperties(names []string) {
	m.Called(names)
}

func (m *mockPropertyMapper) Map(source map[string]any) error {
	return m.Called(source).Error(0)
}

func (m *mockPropertyMapper) MappingResults() *property.MappingResults {
	results, _ := m.Called().Get(0).(*property.MappingResults)
	return results
}

func newTestWebRequest(t *testing.T, rawURL string) *WebRequest {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return NewWebRequest(http.MethodGet, u)
}

func TestCanProcessRequest(t *testing.T) {
	tests := []struct {
		name      string
		supported []RequestType
		request   Request
		expected  bool
	}{
		{
			name:     "default accepts web requests",
			request:  NewWebRequest(http.MethodGet, nil),
			expected: true,
		},
		{
			name:     "default rejects cli requests",
			request:  NewCLIRequest([]string{"posts"}),
			expected: false,
		},
		{
			name:     "default rejects generic requests",
			request:  NewRequest(),
			expected: false,
		},
		{
			name:      "generic tag accepts derived web request",
			supported: []RequestType{GenericRequestType},
			request:   NewWebRequest(http.MethodGet, nil),
			expected:  true,
		},
		{
			name:      "generic tag accepts derived cli request",
			supported: []RequestType{GenericRequestType},
			request:   NewCLIRequest(nil),
			expected:  true,
		},
		{
			name:      "cli tag rejects web request",
			supported: []RequestType{CLIRequestType},
			request:   NewWebRequest(http.MethodGet, nil),
			expected:  false,
		},
		{
			name:     "nil request",
			request:  nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.supported != nil {
				opts = append(opts, WithSupportedRequestTypes(tt.supported...))
			}
			c := NewRequestHandlingController(opts...)
			assert.Equal(t, tt.expected, c.CanProcessRequest(tt.request))
		})
	}
}

func TestProcessRequest_UnsupportedRequestType(t *testing.T) {
	mapper := &mockPropertyMapper{}
	c := NewRequestHandlingController(WithName("PostsController"), WithPropertyMapper(mapper))
	req := NewCLIRequest([]string{"posts", "index"})

	outcome, err := c.ProcessRequest(context.Background(), req, NewResponse())

	require.Error(t, err)
	var unsupported *UnsupportedRequestTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, RefUnsupportedProcessRequest, unsupported.Reference())
	assert.Equal(t, axonerrors.UnsupportedRequestTypeErrorCode, unsupported.ErrorCode())
	assert.Equal(t, CLIRequestType, unsupported.RequestType)
	assert.Equal(t, []RequestType{WebRequestType}, unsupported.Supported)
	assert.Contains(t, err.Error(), "PostsController")
	assert.Contains(t, err.Error(), `"cli"`)
	assert.Contains(t, err.Error(), "web")

	assert.Equal(t, ActionOutcome{}, outcome)
	assert.Nil(t, c.Request())
	assert.Nil(t, c.Response())
	assert.False(t, req.IsDispatched())
	mapper.AssertNotCalled(t, "Map", mock.Anything)
}

func TestProcessRequest_MarksDispatchedBeforeMapping(t *testing.T) {
	mapper := &mockPropertyMapper{}
	req := newTestWebRequest(t, "/posts")
	req.SetArgument("title", "hello")
	resp := NewResponse()

	var dispatchedDuringMap bool
	mapper.On("SetTarget", mock.Anything).Return()
	mapper.On("RegisterValidator", mock.Anything).Return()
	mapper.On("SetAllowedProperties", []string{"title", "t"}).Return()
	mapper.On("Map", map[string]any{"title": "hello"}).
		Run(func(mock.Arguments) { dispatchedDuringMap = req.IsDispatched() }).
		Return(nil)
	mapper.On("MappingResults").Return(property.NewMappingResults())

	c := NewRequestHandlingController(
		WithPropertyMapper(mapper),
		WithArgumentsInitializer(func(args *Arguments) error {
			arg, err := args.New("title", "string")
			if err != nil {
				return err
			}
			arg.SetShortName("t")
			return nil
		}),
	)

	outcome, err := c.ProcessRequest(context.Background(), req, resp)

	require.NoError(t, err)
	assert.True(t, outcome.IsContinue())
	assert.True(t, dispatchedDuringMap)
	assert.True(t, req.IsDispatched())
	assert.Same(t, req, c.Request())
	assert.Same(t, resp, c.Response())
	mapper.AssertExpectations(t)
}

func TestProcessRequest_RegistersFiltersAndEditors(t *testing.T) {
	mapper := &mockPropertyMapper{}
	editor := &property.TimeEditor{}

	mapper.On("SetTarget", mock.Anything).Return()
	mapper.On("RegisterFilter", mock.Anything, "title").Return()
	mapper.On("RegisterPropertyEditor", editor, "published", "2006-01-02").Return()
	mapper.On("RegisterValidator", mock.Anything).Return()
	mapper.On("SetAllowedProperties", []string{"title", "published"}).Return()
	mapper.On("Map", mock.Anything).Return(nil)
	mapper.On("MappingResults").Return(property.NewMappingResults())

	args := NewArguments()
	title, err := args.New("title", "string")
	require.NoError(t, err)
	title.SetFilter(property.TrimFilter)
	published, err := args.New("published", "")
	require.NoError(t, err)
	published.SetPropertyEditor(editor, "2006-01-02")

	c := NewRequestHandlingController(WithPropertyMapper(mapper), WithArguments(args))
	_, err = c.ProcessRequest(context.Background(), newTestWebRequest(t, "/"), NewResponse())

	require.NoError(t, err)
	mapper.AssertExpectations(t)
}

func TestProcessRequest_MapFailureIsWrapped(t *testing.T) {
	mapper := &mockPropertyMapper{}
	mapper.On("SetTarget", mock.Anything).Return()
	mapper.On("RegisterValidator", mock.Anything).Return()
	mapper.On("SetAllowedProperties", mock.Anything).Return()
	mapper.On("Map", mock.Anything).Return(property.ErrNoTarget)

	c := NewRequestHandlingController(WithPropertyMapper(mapper))
	_, err := c.ProcessRequest(context.Background(), newTestWebRequest(t, "/"), NewResponse())

	require.Error(t, err)
	assert.ErrorIs(t, err, property.ErrNoTarget)
	assert.Equal(t, axonerrors.MappingErrorCode, axonerrors.CodeOf(err))
}

func TestProcessRequest_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := newTestWebRequest(t, "/")
	c := NewRequestHandlingController()
	_, err := c.ProcessRequest(ctx, req, NewResponse())

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, req.IsDispatched())
}

func TestMapRequestArgumentsToLocalArguments_Reconciliation(t *testing.T) {
	mapper := &mockPropertyMapper{}
	results := property.NewMappingResults()
	errBadNumber := errors.New("not a number")
	errIgnored := errors.New("unknown")
	results.AddError("page", errBadNumber)
	results.AddError("unknown", errIgnored)
	results.AddWarning("query", errors.New("trimmed"))

	mapper.On("SetTarget", mock.Anything).Return()
	mapper.On("RegisterValidator", mock.Anything).Return()
	mapper.On("SetAllowedProperties", mock.Anything).Return()
	mapper.On("Map", mock.Anything).Return(nil)
	mapper.On("MappingResults").Return(results)

	args := NewArguments()
	_, err := args.New("page", "int")
	require.NoError(t, err)
	_, err = args.New("query", "string")
	require.NoError(t, err)
	_, err = args.New("sort", "string")
	require.NoError(t, err)

	c := NewRequestHandlingController(WithPropertyMapper(mapper), WithArguments(args))
	_, err = c.ProcessRequest(context.Background(), newTestWebRequest(t, "/"), NewResponse())
	require.NoError(t, err)

	page, _ := args.Get("page")
	assert.False(t, page.IsValid())
	assert.Equal(t, []error{errBadNumber}, page.Errors())

	query, _ := args.Get("query")
	assert.True(t, query.IsValid())
	assert.Len(t, query.Warnings(), 1)
	assert.Empty(t, query.Errors())

	sortArg, _ := args.Get("sort")
	assert.True(t, sortArg.IsValid())
	assert.Empty(t, sortArg.Errors())
	assert.Empty(t, sortArg.Warnings())

	assert.Same(t, results, c.ArgumentMappingResults())
}

func TestMapRequestArgumentsToLocalArguments_WithRealMapper(t *testing.T) {
	req := newTestWebRequest(t, "/")
	req.SetArguments(map[string]any{
		"p":      "3",
		"query":  "  go  ",
		"secret": "x",
	})

	c := NewRequestHandlingController(WithArgumentsInitializer(func(args *Arguments) error {
		page, err := args.New("page", "int")
		if err != nil {
			return err
		}
		page.SetShortName("p").SetValidation("min=1")
		query, err := args.New("query", "string")
		if err != nil {
			return err
		}
		query.SetFilter(property.TrimFilter)
		return nil
	}))

	_, err := c.ProcessRequest(context.Background(), req, NewResponse())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Argument("page"))
	assert.Equal(t, "go", c.Argument("query"))
	assert.True(t, c.Arguments().Valid())
	assert.True(t, c.ArgumentMappingResults().HasWarnings())
	assert.Nil(t, c.Argument("secret"))
}

func TestMapRequestArgumentsToLocalArguments_NoActiveRequest(t *testing.T) {
	c := NewRequestHandlingController()
	assert.ErrorIs(t, c.MapRequestArgumentsToLocalArguments(), ErrNoActiveRequest)
}

func processedController(t *testing.T, req Request, opts ...Option) (*RequestHandlingController, *WebResponse) {
	t.Helper()
	resp := NewResponse()
	c := NewRequestHandlingController(opts...)
	_, err := c.ProcessRequest(context.Background(), req, resp)
	require.NoError(t, err)
	return c, resp
}

func TestForward(t *testing.T) {
	req := newTestWebRequest(t, "/")
	req.SetControllerActionName("index")
	req.SetControllerName("Standard")
	req.SetControllerPackageKey("Default")
	c, _ := processedController(t, req)
	require.True(t, req.IsDispatched())

	outcome, err := c.Forward("show", ToController("Posts"), ToPackage("Blog"))

	require.NoError(t, err)
	assert.True(t, outcome.IsForward())
	assert.ErrorIs(t, outcome.Err(), ErrStopAction)
	assert.Equal(t, "show", outcome.Action)
	assert.Equal(t, "Posts", outcome.Controller)
	assert.Equal(t, "Blog", outcome.Package)
	assert.Equal(t, "show", req.ControllerActionName())
	assert.Equal(t, "Posts", req.ControllerName())
	assert.Equal(t, "Blog", req.ControllerPackageKey())
	assert.False(t, req.IsDispatched())
}

func TestForward_OmittedTargetsStayUnchanged(t *testing.T) {
	req := newTestWebRequest(t, "/")
	req.SetControllerName("Posts")
	req.SetControllerPackageKey("Blog")
	req.SetArgument("id", "1")
	c, _ := processedController(t, req)

	outcome, err := c.Forward("list")

	require.NoError(t, err)
	assert.Equal(t, "list", req.ControllerActionName())
	assert.Equal(t, "Posts", req.ControllerName())
	assert.Equal(t, "Blog", req.ControllerPackageKey())
	assert.Equal(t, map[string]any{"id": "1"}, req.Arguments())
	assert.Equal(t, "Posts", outcome.Controller)
	assert.Equal(t, "Blog", outcome.Package)
	assert.False(t, req.IsDispatched())
}

func TestForward_ReplacesArguments(t *testing.T) {
	req := newTestWebRequest(t, "/")
	req.SetArgument("id", "1")
	c, _ := processedController(t, req)

	_, err := c.Forward("show", WithForwardArguments(map[string]any{"slug": "hello"}))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"slug": "hello"}, req.Arguments())
}

func TestActionPrimitives_NoActiveRequest(t *testing.T) {
	c := NewRequestHandlingController()

	_, err := c.Forward("index")
	assert.ErrorIs(t, err, ErrNoActiveRequest)

	_, err = c.Redirect("/")
	assert.ErrorIs(t, err, ErrNoActiveRequest)

	_, err = c.ThrowStatus(http.StatusNotFound)
	assert.ErrorIs(t, err, ErrNoActiveRequest)
}

func TestRedirect(t *testing.T) {
	req := newTestWebRequest(t, "/")
	c, resp := processedController(t, req)

	outcome, err := c.Redirect("http://example.com/<script>")

	require.NoError(t, err)
	assert.True(t, outcome.IsTerminate())
	assert.ErrorIs(t, outcome.Err(), ErrStopAction)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode())
	assert.Equal(t, "303 See Other", resp.Status())
	assert.Equal(t, "http://example.com/<script>", resp.Header("Location"))
	assert.Equal(t,
		`<html><head><meta http-equiv="refresh" content="0;url=http://example.com/&lt;script&gt;"/></head></html>`,
		resp.Content())
	assert.NotContains(t, resp.Content(), "<script>")
}

func TestRedirect_DelayAndStatus(t *testing.T) {
	c, resp := processedController(t, newTestWebRequest(t, "/"))

	_, err := c.Redirect("/posts?a=1&b=2", WithDelay(5), WithRedirectStatus(http.StatusMovedPermanently))

	require.NoError(t, err)
	assert.Equal(t, "301 Moved Permanently", resp.Status())
	assert.Equal(t, "/posts?a=1&b=2", resp.Header("Location"))
	assert.Contains(t, resp.Content(), `content="5;url=/posts?a=1&amp;b=2"`)
}

func TestRedirectAndThrowStatus_NonWebRequest(t *testing.T) {
	req := NewCLIRequest([]string{"posts"})
	c, resp := processedController(t, req, WithSupportedRequestTypes(GenericRequestType))

	_, err := c.Redirect("http://example.com/<script>")
	var unsupported *UnsupportedRequestTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, RefUnsupportedRedirect, unsupported.Reference())

	_, err = c.ThrowStatus(http.StatusNotFound)
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, RefUnsupportedThrowStatus, unsupported.Reference())

	assert.Empty(t, resp.Content())
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Empty(t, resp.Header("Location"))
}

func TestThrowStatus(t *testing.T) {
	tests := []struct {
		name            string
		code            int
		opts            []StatusOption
		expectedStatus  string
		expectedContent string
	}{
		{
			name:            "default content is the status line",
			code:            http.StatusNotFound,
			expectedStatus:  "404 Not Found",
			expectedContent: "404 Not Found",
		},
		{
			name:            "explicit message and content",
			code:            http.StatusNotFound,
			opts:            []StatusOption{WithStatusMessage("Not Found"), WithContent("custom body")},
			expectedStatus:  "404 Not Found",
			expectedContent: "custom body",
		},
		{
			name:            "custom message becomes the default content",
			code:            http.StatusForbidden,
			opts:            []StatusOption{WithStatusMessage("Go Away")},
			expectedStatus:  "403 Go Away",
			expectedContent: "403 Go Away",
		},
		{
			name:            "explicit empty content",
			code:            http.StatusNoContent,
			opts:            []StatusOption{WithContent("")},
			expectedStatus:  "204 No Content",
			expectedContent: "",
		},
		{
			name:            "unknown status code",
			code:            599,
			expectedStatus:  "599 Unknown Status",
			expectedContent: "599 Unknown Status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, resp := processedController(t, newTestWebRequest(t, "/"))

			outcome, err := c.ThrowStatus(tt.code, tt.opts...)

			require.NoError(t, err)
			assert.True(t, outcome.IsTerminate())
			assert.Equal(t, tt.code, resp.StatusCode())
			assert.Equal(t, tt.expectedStatus, resp.Status())
			assert.Equal(t, tt.expectedContent, resp.Content())
		})
	}
}

func TestInitializeArguments(t *testing.T) {
	c := NewRequestHandlingController()
	require.NoError(t, c.InitializeArguments())
	assert.Equal(t, 0, c.Arguments().Len())

	errBoom := errors.New("boom")
	c = NewRequestHandlingController(WithArgumentsInitializer(func(*Arguments) error { return errBoom }))
	_, err := c.ProcessRequest(context.Background(), newTestWebRequest(t, "/"), NewResponse())
	assert.ErrorIs(t, err, errBoom)
}
