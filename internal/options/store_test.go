package options

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/rrhhdev/timesheet-client/internal/api"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
)

type staticTokens struct{}

func (staticTokens) AccessToken() string                 { return "token" }
func (staticTokens) RefreshToken() string                { return "" }
func (staticTokens) SetCredentials(_ models.Credentials) {}

type OptionsStoreTestSuite struct {
	suite.Suite
	router  *gin.Engine
	server  *httptest.Server
	backend *persist.MemoryBackend
	store   *Store
}

func (suite *OptionsStoreTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.server = httptest.NewServer(suite.router)
	suite.backend = persist.NewMemoryBackend()
	gateway := api.New(suite.server.URL, 5*time.Second, 0, staticTokens{})
	suite.store = New(gateway, suite.backend)
}

func (suite *OptionsStoreTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *OptionsStoreTestSuite) TestFetchReplacesTableWholesale() {
	suite.router.GET("/options", func(c *gin.Context) {
		suite.Equal(models.TableCompanies, c.Query("table"))
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "option": "Acme"},
			{"id": 2, "option": "Globex"},
		})
	})

	suite.NoError(suite.store.Fetch(context.Background(), models.TableCompanies, ""))
	got := suite.store.Get(models.TableCompanies)
	suite.Require().Len(got, 2)
	suite.Equal("Acme", got[0].Label)
	suite.False(suite.store.Loading(models.TableCompanies))
}

// The backend is inconsistent about the label key; every variant must
// normalize into Option.Label.
func (suite *OptionsStoreTestSuite) TestLabelKeyNormalization() {
	suite.router.GET("/options", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "option": "ByOption"},
			{"id": 2, "options": "ByOptions"},
			{"id": 3, "name": "ByName", "relationship_id": 44},
		})
	})

	suite.NoError(suite.store.Fetch(context.Background(), models.TableProjects, ""))
	got := suite.store.Get(models.TableProjects)
	suite.Require().Len(got, 3)
	suite.Equal("ByOption", got[0].Label)
	suite.Equal("ByOptions", got[1].Label)
	suite.Equal("ByName", got[2].Label)
	suite.Equal(models.FlexID("44"), got[2].RelationshipID)
}

func (suite *OptionsStoreTestSuite) TestFetchErrorClearsLoadingAndKeepsCache() {
	suite.router.GET("/options", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "boom"})
	})

	err := suite.store.Fetch(context.Background(), models.TableCompanies, "")
	suite.Error(err)
	suite.False(suite.store.Loading(models.TableCompanies))
	suite.ErrorContains(suite.store.Err(), "boom")
}

// Two overlapping fetches for one table: the loading flag must not wedge and
// the slower (older) response must not replace the newer list.
func (suite *OptionsStoreTestSuite) TestConcurrentFetchesSameTable() {
	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	suite.router.GET("/options", func(c *gin.Context) {
		if first {
			first = false
			close(entered)
			<-release
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "option": "Stale"}})
			return
		}
		c.JSON(http.StatusOK, []gin.H{{"id": 2, "option": "Fresh"}})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		suite.NoError(suite.store.Fetch(context.Background(), models.TableCompanies, ""))
	}()

	<-entered
	suite.NoError(suite.store.Fetch(context.Background(), models.TableCompanies, ""))
	close(release)
	<-done

	suite.False(suite.store.Loading(models.TableCompanies))
	got := suite.store.Get(models.TableCompanies)
	suite.Require().Len(got, 1)
	suite.Equal("Fresh", got[0].Label)
}

func (suite *OptionsStoreTestSuite) TestAddAppendsOnlyOnSuccess() {
	suite.router.POST("/options", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 7, "option": "NewCo"})
	})

	suite.NoError(suite.store.Add(context.Background(), models.TableCompanies, "NewCo"))
	got := suite.store.Get(models.TableCompanies)
	suite.Require().Len(got, 1)
	suite.Equal(models.FlexID("7"), got[0].ID)
}

func (suite *OptionsStoreTestSuite) TestFailedMutationLeavesCacheUntouched() {
	suite.router.POST("/options", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "message": "duplicate"})
	})
	suite.router.DELETE("/options", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "boom"})
	})

	suite.Error(suite.store.Add(context.Background(), models.TableCompanies, "Dup"))
	suite.Empty(suite.store.Get(models.TableCompanies))

	suite.store.tables[models.TableHourTypes] = &partition{Options: []models.Option{{ID: "1", Label: "normal"}}}
	suite.Error(suite.store.Delete(context.Background(), models.TableHourTypes, "1"))
	suite.Len(suite.store.Get(models.TableHourTypes), 1)
}

func (suite *OptionsStoreTestSuite) TestUpdateReplacesByID() {
	suite.store.tables[models.TableTaskTypes] = &partition{Options: []models.Option{
		{ID: "1", Label: "dev"},
		{ID: "2", Label: "ops"},
	}}
	suite.router.PUT("/options", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	suite.NoError(suite.store.Update(context.Background(), models.TableTaskTypes, "2", "sre"))
	got := suite.store.Get(models.TableTaskTypes)
	suite.Equal("dev", got[0].Label)
	suite.Equal("sre", got[1].Label)
}

func (suite *OptionsStoreTestSuite) TestTablesAreIndependentPartitions() {
	suite.router.GET("/options", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "option": c.Query("table")}})
	})

	suite.NoError(suite.store.Fetch(context.Background(), models.TableCompanies, ""))
	suite.NoError(suite.store.Fetch(context.Background(), models.TableHourTypes, ""))

	suite.Equal(models.TableCompanies, suite.store.Get(models.TableCompanies)[0].Label)
	suite.Equal(models.TableHourTypes, suite.store.Get(models.TableHourTypes)[0].Label)
}

func (suite *OptionsStoreTestSuite) TestPersistedAcrossStores() {
	suite.router.GET("/options", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "option": "Acme"}})
	})
	suite.NoError(suite.store.Fetch(context.Background(), models.TableCompanies, ""))

	gateway := api.New(suite.server.URL, 5*time.Second, 0, staticTokens{})
	reloaded := New(gateway, suite.backend)
	got := reloaded.Get(models.TableCompanies)
	suite.Require().Len(got, 1)
	suite.Equal("Acme", got[0].Label)
}

func TestOptionsStoreTestSuite(t *testing.T) {
	suite.Run(t, new(OptionsStoreTestSuite))
}
