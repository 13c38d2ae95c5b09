package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/filter"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/session"
)

type StatusStoreTestSuite struct {
	suite.Suite
	router  *gin.Engine
	server  *httptest.Server
	backend *persist.MemoryBackend
	session *session.Store
	store   *Store

	requests int
}

func (suite *StatusStoreTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.requests = 0
	suite.router.Use(func(c *gin.Context) {
		suite.requests++
		c.Next()
	})

	suite.server = httptest.NewServer(suite.router)
	suite.backend = persist.NewMemoryBackend()
	suite.session = session.New(suite.backend)
	suite.login(models.RoleAdmin)

	gateway := api.New(suite.server.URL, 5*time.Second, 0, suite.session)
	suite.store = New(gateway, suite.session, suite.backend)
}

func (suite *StatusStoreTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *StatusStoreTestSuite) login(role string) {
	claims := jwt.MapClaims{
		"id":       "1",
		"fullname": "Root Admin",
		"email":    "admin@example.com",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	suite.Require().NoError(err)
	suite.session.Login(models.Credentials{AccessToken: signed, RefreshToken: "r"})
}

// A non-admin identity must be rejected before any network traffic happens.
func (suite *StatusStoreTestSuite) TestNonAdminGatedWithoutNetworkCall() {
	suite.login(models.RoleUser)

	err := suite.store.Fetch(context.Background())
	suite.ErrorIs(err, apierrors.ErrForbidden)

	_, _, err = suite.store.Download(context.Background(), []models.FlexID{"1"}, FormatCSV)
	suite.ErrorIs(err, apierrors.ErrForbidden)

	suite.Zero(suite.requests)
}

func (suite *StatusStoreTestSuite) TestFetchReplacesMirror() {
	suite.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, []models.Task{
			{ID: "1", Fullname: "Jane Doe", Status: models.TaskStatusSent},
		})
	})

	suite.NoError(suite.store.Fetch(context.Background()))
	tasks := suite.store.Tasks()
	suite.Require().Len(tasks, 1)
	suite.Equal("Jane Doe", tasks[0].Fullname)
}

func (suite *StatusStoreTestSuite) TestFetchFilteredSendsCriteria() {
	var gotDate string
	suite.router.GET("/status/filtertasks", func(c *gin.Context) {
		gotDate = c.Query("date")
		c.JSON(http.StatusOK, []models.Task{})
	})

	f := filter.Filter{DateFrom: "2024-01-01", DateTo: "2024-01-31"}
	suite.NoError(suite.store.FetchFiltered(context.Background(), f))
	suite.Equal("2024-01-01 2024-01-31", gotDate)
}

func (suite *StatusStoreTestSuite) TestMarkRRHHRefetches() {
	marked := false
	suite.router.POST("/status/rrhh", func(c *gin.Context) {
		marked = true
		c.JSON(http.StatusOK, gin.H{})
	})
	suite.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, []models.Task{{ID: "1", Status: models.TaskStatusDone}})
	})

	suite.NoError(suite.store.MarkRRHH(context.Background(), []models.FlexID{"1"}))
	suite.True(marked)
	suite.Require().Len(suite.store.Tasks(), 1)
	suite.Equal(models.TaskStatusDone, suite.store.Tasks()[0].Status)
}

func (suite *StatusStoreTestSuite) TestDownloadDefaultsFilename() {
	suite.router.POST("/status/download", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/csv", []byte("a,b,c"))
	})

	data, filename, err := suite.store.Download(context.Background(), []models.FlexID{"1", "2"}, FormatCSV)
	suite.NoError(err)
	suite.Equal([]byte("a,b,c"), data)
	suite.Equal("tasks.csv", filename)
}

func (suite *StatusStoreTestSuite) TestDownloadErrorSurfacesServerText() {
	suite.router.POST("/status/download", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "INVALID_OPERATION", "message": "nothing to export"})
	})

	_, _, err := suite.store.Download(context.Background(), nil, FormatXLSX)
	suite.ErrorContains(err, "nothing to export")
	suite.ErrorContains(suite.store.Err(), "nothing to export")
}

func TestStatusStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StatusStoreTestSuite))
}
