package users

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
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
	"github.com/rrhhdev/timesheet-client/internal/session"
)

type UsersServiceTestSuite struct {
	suite.Suite
	router   *gin.Engine
	server   *httptest.Server
	backend  *persist.MemoryBackend
	session  *session.Store
	service  *Service
	requests int
}

func (suite *UsersServiceTestSuite) SetupTest() {
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
	suite.service = New(gateway, suite.session, suite.backend)
}

func (suite *UsersServiceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *UsersServiceTestSuite) login(role string) {
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

func (suite *UsersServiceTestSuite) TestListGatedForNonAdmins() {
	suite.login(models.RoleUser)
	_, err := suite.service.List(context.Background())
	suite.ErrorIs(err, apierrors.ErrForbidden)
	suite.Zero(suite.requests)
}

func (suite *UsersServiceTestSuite) TestList() {
	suite.router.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, []models.User{{ID: "1", Fullname: "Root Admin"}})
	})

	users, err := suite.service.List(context.Background())
	suite.NoError(err)
	suite.Require().Len(users, 1)
	suite.Equal("Root Admin", users[0].Fullname)
}

func (suite *UsersServiceTestSuite) TestGetNotFoundIsSoftEmpty() {
	suite.router.GET("/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "no such user"})
	})

	user, err := suite.service.Get(context.Background(), "42")
	suite.NoError(err)
	suite.Nil(user)
}

func (suite *UsersServiceTestSuite) TestPasswordResetPersistsEmail() {
	suite.router.POST("/users/newpassword", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	suite.NoError(suite.service.RequestPasswordReset(context.Background(), "jane@example.com"))
	suite.Equal("jane@example.com", suite.service.PendingResetEmail())
}

func (suite *UsersServiceTestSuite) TestChangePasswordClearsEmail() {
	suite.router.POST("/users/newpassword", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	suite.router.POST("/users/changepassword", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	suite.NoError(suite.service.RequestPasswordReset(context.Background(), "jane@example.com"))
	suite.NoError(suite.service.ChangePassword(context.Background(), "reset-token", "hunter22"))
	suite.Empty(suite.service.PendingResetEmail())
}

func (suite *UsersServiceTestSuite) TestPasswordResetOpenToAnyRole() {
	suite.login(models.RoleUser)
	suite.router.POST("/users/newpassword", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	suite.NoError(suite.service.RequestPasswordReset(context.Background(), "jane@example.com"))
	suite.Equal(1, suite.requests)
}

func TestUsersServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UsersServiceTestSuite))
}
