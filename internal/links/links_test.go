package links

//go:generate mockgen -source=links.go -destination=mocks/mocks.go -package=mocks Checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"discadian/internal/links/mocks"
	"discadian/internal/registry"
)

func row(id, uuid string) registry.DiscordLink {
	l := registry.DiscordLink{}
	if id != "" {
		l.ID = &id
	}
	if uuid != "" {
		l.UUID = &uuid
	}
	return l
}

func TestEvaluate(t *testing.T) {
	t.Run("matching row plus unrelated row for the same uuid is not a contradiction", func(t *testing.T) {
		v := Evaluate([]registry.DiscordLink{row("111", "aaa"), row("222", "aaa")}, "111", "Notch", "aaa")
		assert.False(t, v.HasContradiction)
		assert.True(t, v.IsFullyLinked)
	})

	t.Run("discord linked elsewhere names the other uuid", func(t *testing.T) {
		v := Evaluate([]registry.DiscordLink{row("111", "bbb")}, "111", "Notch", "aaa")
		assert.True(t, v.HasContradiction)
		assert.False(t, v.LookupFailed)
		assert.Contains(t, v.Detail, "bbb")
		assert.Contains(t, v.Detail, "<@111>")
		assert.Contains(t, v.Detail, "Attempted IGN: `Notch`")
	})

	t.Run("ign linked to another discord names that id", func(t *testing.T) {
		v := Evaluate([]registry.DiscordLink{row("999", "aaa")}, "111", "Notch", "aaa")
		assert.True(t, v.HasContradiction)
		assert.Contains(t, v.Detail, "linked to Discord ID `999`")
	})

	t.Run("both sides linked to different partners", func(t *testing.T) {
		v := Evaluate([]registry.DiscordLink{row("111", "bbb"), row("999", "aaa")}, "111", "Notch", "aaa")
		assert.True(t, v.HasContradiction)
		assert.Contains(t, v.Detail, "Discord is linked to UUID `bbb`, but `Notch` has UUID `aaa`")
	})

	t.Run("rows with a null side are ignored", func(t *testing.T) {
		v := Evaluate([]registry.DiscordLink{row("111", ""), row("", "aaa")}, "111", "Notch", "aaa")
		assert.False(t, v.HasContradiction)
		assert.False(t, v.IsFullyLinked)
	})

	t.Run("no rows means unlinked without contradiction", func(t *testing.T) {
		v := Evaluate(nil, "111", "Notch", "aaa")
		assert.Equal(t, Verdict{}, v)
	})
}

type ValidatorSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	checker   *mocks.MockChecker
	validator *Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.checker = mocks.NewMockChecker(s.ctrl)
	var err error
	s.validator, err = New(s.checker)
	s.Require().NoError(err)
}

func (s *ValidatorSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
	s.Contains(err.Error(), "link checker is required")
}

func (s *ValidatorSuite) TestVerifyLinks() {
	ctx := context.Background()

	s.Run("lookup failure is terminal", func() {
		s.checker.EXPECT().CheckLink(gomock.Any(), "555", "uuid-1").
			Return(registry.Upstream[[]registry.DiscordLink]("API error 502"))

		v := s.validator.VerifyLinks(ctx, "555", "Notch", "uuid-1")
		s.True(v.HasContradiction)
		s.True(v.LookupFailed)
		s.Equal("Error checking Discord link: API error 502", v.Detail)
	})

	s.Run("fully linked", func() {
		s.checker.EXPECT().CheckLink(gomock.Any(), "555", "uuid-1").
			Return(registry.Success([]registry.DiscordLink{row("555", "uuid-1")}))

		v := s.validator.VerifyLinks(ctx, "555", "Notch", "uuid-1")
		s.False(v.HasContradiction)
		s.True(v.IsFullyLinked)
	})
}
