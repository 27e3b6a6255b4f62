package lobby

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/testutil"
)

// fakeAPI records calls and scripts join responses
type fakeAPI struct {
	createCalls int
	joinCalls   int
	renameCalls int
	renameName  string
	joinErr     error
	renameErr   error
}

func (f *fakeAPI) CreateRoom(ctx context.Context, name, lang string) (model.RoomID, error) {
	f.createCalls++
	return "123456", nil
}

func (f *fakeAPI) JoinRoom(ctx context.Context, roomID model.RoomID, name, lang string) error {
	f.joinCalls++
	return f.joinErr
}

func (f *fakeAPI) RenameUser(ctx context.Context, roomID model.RoomID, name string) error {
	f.renameCalls++
	f.renameName = name
	return f.renameErr
}

type ControllerSuite struct {
	suite.Suite
	api        *fakeAPI
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.api = &fakeAPI{}
	s.controller = NewController(s.api, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) TestCreateRoomSucceeds() {
	roomID, err := s.controller.CreateRoom(s.ctx, "Ann", "en")
	s.Require().NoError(err)
	s.Equal(model.RoomID("123456"), roomID)
	s.Equal(1, s.api.createCalls)
}

func (s *ControllerSuite) TestCreateRoomRejectsInvalidName() {
	_, err := s.controller.CreateRoom(s.ctx, "<script>", "en")
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrInvalidName)
	s.Zero(s.api.createCalls, "invalid input must never reach the network")
}

func (s *ControllerSuite) TestJoinRoomSucceeds() {
	err := s.controller.JoinRoom(s.ctx, "123456", "Ann", "en")
	s.Require().NoError(err)
	s.Equal(1, s.api.joinCalls)
	s.Zero(s.api.renameCalls)
}

func (s *ControllerSuite) TestJoinRoomRejectsBadCode() {
	err := s.controller.JoinRoom(s.ctx, "12a45", "Ann", "en")
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrInvalidRoomCode)
	s.Zero(s.api.joinCalls)
}

func (s *ControllerSuite) TestJoinRoomConflictFallsBackToRename() {
	s.api.joinErr = model.ErrAlreadyJoined

	err := s.controller.JoinRoom(s.ctx, "123456", "NewName", "en")
	s.Require().NoError(err, "conflict means already a member; join proceeds via rename")
	s.Equal(1, s.api.renameCalls)
	s.Equal("NewName", s.api.renameName)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	s.api.joinErr = model.ErrRoomNotFound

	err := s.controller.JoinRoom(s.ctx, "999999", "Ann", "en")
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Zero(s.api.renameCalls)
}
