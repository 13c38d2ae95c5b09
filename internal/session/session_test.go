package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
)

type SessionStoreTestSuite struct {
	suite.Suite
	backend *persist.MemoryBackend
	store   *Store
}

func (suite *SessionStoreTestSuite) SetupTest() {
	suite.backend = persist.NewMemoryBackend()
	suite.store = New(suite.backend)
}

func (suite *SessionStoreTestSuite) signToken(expiresIn time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &accessClaims{
		UserID:   "7",
		Fullname: "Jane Doe",
		Email:    "jane@example.com",
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	suite.Require().NoError(err)
	return signed
}

func (suite *SessionStoreTestSuite) TestLoginDecodesIdentity() {
	suite.store.Login(models.Credentials{
		AccessToken:  suite.signToken(time.Hour),
		RefreshToken: "refresh-1",
	})

	identity := suite.store.Identity()
	suite.Equal(models.FlexID("7"), identity.ID)
	suite.Equal("Jane Doe", identity.Fullname)
	suite.Equal("jane@example.com", identity.Email)
	suite.True(suite.store.IsAdmin())
	suite.True(suite.store.IsAuthenticated())
}

func (suite *SessionStoreTestSuite) TestLoginWithGarbageTokenKeepsState() {
	suite.store.Login(models.Credentials{AccessToken: suite.signToken(time.Hour)})
	before := suite.store.Identity()

	suite.store.Login(models.Credentials{AccessToken: "not-a-jwt"})

	suite.Equal(before, suite.store.Identity())
	suite.True(suite.store.IsAuthenticated())
}

func (suite *SessionStoreTestSuite) TestExpiredTokenClearsSession() {
	suite.store.Login(models.Credentials{AccessToken: suite.signToken(-time.Minute)})

	suite.False(suite.store.IsAuthenticated())
	suite.Empty(suite.store.AccessToken())
	suite.Empty(suite.store.Identity().Email)

	// The persisted entry is gone too.
	_, err := suite.backend.Load(persist.KeyAuth)
	suite.ErrorIs(err, persist.ErrNoEntry)
}

func (suite *SessionStoreTestSuite) TestSessionRestoredAcrossStores() {
	suite.store.Login(models.Credentials{
		AccessToken:  suite.signToken(time.Hour),
		RefreshToken: "refresh-1",
	})

	reloaded := New(suite.backend)
	suite.True(reloaded.IsAuthenticated())
	suite.Equal("Jane Doe", reloaded.Identity().Fullname)
	suite.Equal("refresh-1", reloaded.RefreshToken())
}

func (suite *SessionStoreTestSuite) TestSetCredentialsKeepsIdentity() {
	suite.store.Login(models.Credentials{
		AccessToken:  suite.signToken(time.Hour),
		RefreshToken: "refresh-1",
	})

	next := models.Credentials{
		AccessToken:  suite.signToken(2 * time.Hour),
		RefreshToken: "refresh-2",
	}
	suite.store.SetCredentials(next)

	suite.Equal("refresh-2", suite.store.RefreshToken())
	suite.Equal("Jane Doe", suite.store.Identity().Fullname)
}

func (suite *SessionStoreTestSuite) TestLogout() {
	suite.store.Login(models.Credentials{AccessToken: suite.signToken(time.Hour)})
	suite.store.Logout()

	suite.False(suite.store.IsAuthenticated())
	_, err := suite.backend.Load(persist.KeyAuth)
	suite.ErrorIs(err, persist.ErrNoEntry)
}

func TestSessionStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreTestSuite))
}
