package auth

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/scene-hunter/scenehunter/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	clock   *clockwork.FakeClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.clock, DefaultConfig())
}

func (s *ServiceSuite) TestIssueTokenMintsUniqueTokens() {
	first := s.service.IssueToken()
	second := s.service.IssueToken()

	s.NotEmpty(first.Token)
	s.NotEqual(first.Token, second.Token)
	s.Empty(first.PlayerID)
}

func (s *ServiceSuite) TestResolvePlayerMintsIDOnFirstUse() {
	session := s.service.IssueToken()

	id, err := s.service.ResolvePlayer(session.Token)
	s.Require().NoError(err)
	s.NotEmpty(id)

	// Subsequent lookups return the same identity
	again, err := s.service.ResolvePlayer(session.Token)
	s.Require().NoError(err)
	s.Equal(id, again)
}

func (s *ServiceSuite) TestResolvePlayerRejectsUnknownToken() {
	_, err := s.service.ResolvePlayer("no-such-token")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestResolvePlayerRejectsExpiredToken() {
	session := s.service.IssueToken()

	s.clock.Advance(DefaultConfig().TokenDuration + time.Minute)

	_, err := s.service.ResolvePlayer(session.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestValidateDoesNotMintIdentity() {
	session := s.service.IssueToken()

	id, err := s.service.Validate(session.Token)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	expired := s.service.IssueToken()
	s.clock.Advance(DefaultConfig().TokenDuration + time.Minute)
	fresh := s.service.IssueToken()

	s.service.CleanExpiredSessions()

	_, err := s.service.Validate(expired.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
	_, err = s.service.Validate(fresh.Token)
	s.NoError(err)
}
