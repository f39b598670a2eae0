package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vadimbarashkov/shortlink/internal/entity"

	httpMock "github.com/vadimbarashkov/shortlink/mocks/http"
)

const (
	testBaseURL = "https://if.gy"
	testToken   = "valid-token"
)

func strPtr(s string) *string {
	return &s
}

type HandlersTestSuite struct {
	suite.Suite
	logger          *httplog.Logger
	urlUseCaseMock  *httpMock.MockUrlUseCase
	authUseCaseMock *httpMock.MockAuthUseCase
	server          *httptest.Server
	e               *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlUseCaseMock = httpMock.NewMockUrlUseCase(suite.T())
	suite.authUseCaseMock = httpMock.NewMockAuthUseCase(suite.T())

	router := NewRouter(suite.logger, suite.urlUseCaseMock, suite.authUseCaseMock, RouterOptions{
		BaseURL:  testBaseURL,
		HomePath: "/",
	})
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlUseCaseMock.AssertExpectations(suite.T())
	suite.authUseCaseMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) expectAuthorized() {
	suite.authUseCaseMock.
		On("Authorize", mock.Anything, testToken).
		Once().
		Return(nil)
}

func (suite *HandlersTestSuite) TestPing() {
	const path = "/api/ping"

	suite.Run("success", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong")
	})
}

func (suite *HandlersTestSuite) TestShortenURL() {
	const path = "/api/shorten"

	suite.Run("empty request body", func() {
		resp := suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "empty request body")
	})

	suite.Run("invalid request body", func() {
		resp := suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "invalid request body")
	})

	suite.Run("unknown field", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com", "alias": "my-link"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "invalid request body")
	})

	suite.Run("missing url", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"customPath": "my-link"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.ContainsKey("error")
		resp.Value("details").Array().Value(0).Object().
			HasValue("field", "url").
			ContainsKey("message")
	})

	suite.Run("domain validation error", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://foo.com", "api").
			Once().
			Return(nil, fmt.Errorf("wrapped: %w", entity.NewValidationError("customPath", "custom path is reserved")))

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://foo.com", "customPath": "api"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "custom path is reserved")
		resp.Value("details").Array().Value(0).Object().
			HasValue("field", "customPath")
	})

	suite.Run("alias exists", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://foo.com", "my-link").
			Once().
			Return(nil, entity.ErrAliasExists)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://foo.com", "customPath": "my-link"}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object()

		resp.HasValue("error", aliasExistsResponse.Error)
	})

	suite.Run("server error", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com", "").
			Once().
			Return(nil, errors.New("pq: connection refused"))

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("error", serverErrorResponse.Error)
		resp.NotContainsKey("details")
	})

	suite.Run("success by id", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "example.com", "").
			Once().
			Return(&entity.URL{ID: 1, OriginalURL: "https://example.com"}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("shortUrl", testBaseURL+"/1")
		resp.NotContainsKey("customPath")
	})

	suite.Run("success with alias", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://foo.com", "my-link").
			Once().
			Return(&entity.URL{ID: 2, OriginalURL: "https://foo.com", CustomAlias: strPtr("my-link")}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://foo.com", "customPath": "my-link"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("shortUrl", testBaseURL+"/my-link")
		resp.HasValue("customPath", "my-link")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	suite.Run("not found goes home", func() {
		suite.urlUseCaseMock.
			On("ResolveIdentifier", mock.Anything, "999").
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET("/999").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("/")
	})

	suite.Run("store error goes home", func() {
		suite.urlUseCaseMock.
			On("ResolveIdentifier", mock.Anything, "my-link").
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.GET("/my-link").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("/")
	})

	suite.Run("timeout goes home", func() {
		suite.urlUseCaseMock.
			On("ResolveIdentifier", mock.Anything, "3000000000").
			Once().
			Return(nil, fmt.Errorf("resolve: %w", context.DeadlineExceeded))

		suite.e.GET("/3000000000").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("/")
	})

	suite.Run("success by id", func() {
		suite.urlUseCaseMock.
			On("ResolveIdentifier", mock.Anything, "1").
			Once().
			Return(&entity.URL{ID: 1, OriginalURL: "https://example.com", Visits: 1}, nil)

		suite.e.GET("/1").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})

	suite.Run("success by alias", func() {
		suite.urlUseCaseMock.
			On("ResolveIdentifier", mock.Anything, "my-link").
			Once().
			Return(&entity.URL{ID: 2, OriginalURL: "https://foo.com", CustomAlias: strPtr("my-link")}, nil)

		suite.e.GET("/my-link").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://foo.com")
	})

	suite.Run("home", func() {
		suite.e.GET("/").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("/swagger/index.html")
	})
}

func (suite *HandlersTestSuite) TestVerifyPasskey() {
	const path = "/api/verify-passkey"

	suite.Run("unknown field", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{"passkey": "secret", "user": "admin"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "invalid request body")
	})

	suite.Run("missing passkey", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("details").Array().Value(0).Object().
			HasValue("field", "passkey")
	})

	suite.Run("invalid passkey", func() {
		suite.authUseCaseMock.
			On("VerifyPasskey", mock.Anything, "wrong").
			Once().
			Return("", entity.ErrUnauthorized)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"passkey": "wrong"}).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object()

		resp.HasValue("error", invalidPasskeyResponse.Error)
		resp.NotContainsKey("token")
	})

	suite.Run("server error", func() {
		suite.authUseCaseMock.
			On("VerifyPasskey", mock.Anything, "secret").
			Once().
			Return("", errors.New("signing failed"))

		suite.e.POST(path).
			WithJSON(map[string]string{"passkey": "secret"}).
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("success", func() {
		suite.authUseCaseMock.
			On("VerifyPasskey", mock.Anything, "secret").
			Once().
			Return(testToken, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"passkey": "secret"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("success", true)
		resp.HasValue("token", testToken)
	})
}

func (suite *HandlersTestSuite) TestInitDB() {
	const path = "/api/init-db"

	suite.Run("server error", func() {
		suite.urlUseCaseMock.
			On("InitSchema", mock.Anything).
			Once().
			Return(false, errors.New("unknown error"))

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("error", serverErrorResponse.Error)
	})

	suite.Run("success", func() {
		suite.urlUseCaseMock.
			On("InitSchema", mock.Anything).
			Once().
			Return(true, nil)

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("success", true)
		resp.HasValue("message", "database initialized")
	})

	suite.Run("already initialized", func() {
		suite.urlUseCaseMock.
			On("InitSchema", mock.Anything).
			Once().
			Return(false, nil)

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("success", true)
	})
}

func (suite *HandlersTestSuite) TestListURLs() {
	const path = "/api/urls"

	suite.Run("missing header", func() {
		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object()

		resp.HasValue("error", unauthorizedResponse.Error)
	})

	suite.Run("malformed header", func() {
		suite.e.GET(path).
			WithHeader("Authorization", "Basic abc").
			Expect().
			Status(http.StatusUnauthorized)
	})

	suite.Run("empty bearer token", func() {
		suite.e.GET(path).
			WithHeader("Authorization", "Bearer ").
			Expect().
			Status(http.StatusUnauthorized)
	})

	suite.Run("rejected token", func() {
		suite.authUseCaseMock.
			On("Authorize", mock.Anything, "expired").
			Once().
			Return(fmt.Errorf("%w: token expired", entity.ErrUnauthorized))

		suite.e.GET(path).
			WithHeader("Authorization", "Bearer expired").
			Expect().
			Status(http.StatusUnauthorized)
	})

	suite.Run("server error", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("ListURLs", mock.Anything).
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.GET(path).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("empty list", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("ListURLs", mock.Anything).
			Once().
			Return([]entity.URL{}, nil)

		resp := suite.e.GET(path).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.Value("urls").Array().IsEmpty()
	})

	suite.Run("success", func() {
		createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("ListURLs", mock.Anything).
			Once().
			Return([]entity.URL{
				{ID: 2, OriginalURL: "https://foo.com", CustomAlias: strPtr("my-link"), Visits: 3, CreatedAt: createdAt},
				{ID: 1, OriginalURL: "https://example.com", CreatedAt: createdAt},
			}, nil)

		resp := suite.e.GET(path).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		urls := resp.Value("urls").Array()
		urls.Length().IsEqual(2)

		first := urls.Value(0).Object()
		first.HasValue("id", 2)
		first.HasValue("original_url", "https://foo.com")
		first.HasValue("custom_path", "my-link")
		first.HasValue("visits", 3)
		first.HasValue("created_at", "2025-01-02T03:04:05Z")

		urls.Value(1).Object().Value("custom_path").IsNull()
	})
}

func (suite *HandlersTestSuite) TestGetURLStats() {
	const path = "/api/urls/%s"

	suite.Run("invalid id", func() {
		suite.expectAuthorized()

		resp := suite.e.GET(fmt.Sprintf(path, "abc")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", invalidIDResponse.Error)
	})

	suite.Run("id beyond int4", func() {
		suite.expectAuthorized()

		suite.e.GET(fmt.Sprintf(path, "3000000000")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", invalidIDResponse.Error)
	})

	suite.Run("url not found", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("GetURLStats", mock.Anything, int64(7)).
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET(fmt.Sprintf(path, "7")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("error", urlNotFoundResponse.Error)
	})

	suite.Run("success", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("GetURLStats", mock.Anything, int64(1)).
			Once().
			Return(&entity.URL{ID: 1, OriginalURL: "https://example.com", Visits: 2}, nil)

		resp := suite.e.GET(fmt.Sprintf(path, "1")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("id", 1)
		resp.HasValue("visits", 2)
	})
}

func (suite *HandlersTestSuite) TestDeleteURL() {
	const path = "/api/urls/%s"

	suite.Run("unauthorized", func() {
		suite.e.DELETE(fmt.Sprintf(path, "1")).
			Expect().
			Status(http.StatusUnauthorized)
	})

	suite.Run("invalid id", func() {
		suite.expectAuthorized()

		suite.e.DELETE(fmt.Sprintf(path, "0")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusBadRequest)
	})

	suite.Run("url not found", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("DeleteURL", mock.Anything, int64(1)).
			Once().
			Return(entity.ErrURLNotFound)

		suite.e.DELETE(fmt.Sprintf(path, "1")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("success", func() {
		suite.expectAuthorized()
		suite.urlUseCaseMock.
			On("DeleteURL", mock.Anything, int64(1)).
			Once().
			Return(nil)

		suite.e.DELETE(fmt.Sprintf(path, "1")).
			WithHeader("Authorization", "Bearer "+testToken).
			Expect().
			Status(http.StatusNoContent).
			NoContent()
	})
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
