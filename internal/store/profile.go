package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opProfileFetch   = "PROFILE_FETCH"
	opProfileUpdate  = "PROFILE_UPDATE"
	opAvatar         = "AVATAR"
	opIdentitySubmit = "IDENTITY_SUBMIT"
	slotProfile      = "profile"

	// ActionAvatarUpdate is the optimistic avatar swap applied before the server answers.
	ActionAvatarUpdate = "AVATAR_UPDATE"
)

// ProfileState is the signed-in user's profile.
type ProfileState struct {
	Profile *models.UserProfile
}

// ProfileStore tracks the profile.
type ProfileStore struct {
	*Store[ProfileState]
	users    service.UserService
	notifier Notifier
}

// NewProfileStore builds the profile container.
func NewProfileStore(users service.UserService, notifier Notifier, logger zerolog.Logger) *ProfileStore {
	return &ProfileStore{
		Store:    New("profile", func() ProfileState { return ProfileState{} }, reduceProfile, logger),
		users:    users,
		notifier: notifier,
	}
}

// FetchMyProfile loads the signed-in user's profile.
func (s *ProfileStore) FetchMyProfile(ctx context.Context) (models.UserProfile, error) {
	return Run(ctx, s.Store, s.notifier, opProfileFetch, slotProfile, s.users.MyProfile)
}

// UpdateProfile saves profile fields once the server confirms them.
func (s *ProfileStore) UpdateProfile(ctx context.Context, payload dto.ProfileUpdateRequest) (models.UserProfile, error) {
	current, err := s.loadedProfile()
	if err != nil {
		return models.UserProfile{}, err
	}
	profileID := current.ID
	return Run(ctx, s.Store, s.notifier, opProfileUpdate, "", func(ctx context.Context) (models.UserProfile, error) {
		return s.users.UpdateProfile(ctx, profileID, payload)
	})
}

// UpdateAvatar shows the new avatar immediately and reverts it if the server rejects the change.
func (s *ProfileStore) UpdateAvatar(ctx context.Context, avatarURL string) (models.UserProfile, error) {
	current, err := s.loadedProfile()
	if err != nil {
		return models.UserProfile{}, err
	}
	profileID, previous := current.ID, current.AvatarURL

	seq := s.Begin(opAvatar, "")
	s.Dispatch(Action{Type: ActionAvatarUpdate, Seq: seq, Payload: &avatarURL})

	profile, err := s.users.UpdateAvatar(ctx, profileID, avatarURL)
	if err != nil {
		if s.Dispatch(Action{Type: opAvatar + SuffixError, Seq: seq, Payload: previous, Err: err}) && s.notifier != nil {
			s.notifier.Notify(ctx, err)
		}
		return models.UserProfile{}, err
	}
	s.Dispatch(Action{Type: opAvatar + SuffixSuccess, Seq: seq, Payload: profile})
	return profile, nil
}

// SubmitIdentity attaches an identity document image to the profile.
func (s *ProfileStore) SubmitIdentity(ctx context.Context, imageURL string) (models.UserProfile, error) {
	current, err := s.loadedProfile()
	if err != nil {
		return models.UserProfile{}, err
	}
	profileID := current.ID
	return Run(ctx, s.Store, s.notifier, opIdentitySubmit, "", func(ctx context.Context) (models.UserProfile, error) {
		return s.users.SubmitIdentity(ctx, profileID, imageURL)
	})
}

// loadedProfile reads the profile once so callers never see a reset in between.
func (s *ProfileStore) loadedProfile() (models.UserProfile, error) {
	profile := s.State().Profile
	if profile == nil || profile.ID == "" {
		return models.UserProfile{}, apperror.Validation("profile is not loaded", nil)
	}
	return *profile, nil
}

func reduceProfile(state ProfileState, action Action) ProfileState {
	switch action.Type {
	case opProfileFetch + SuffixSuccess, opProfileUpdate + SuffixSuccess, opAvatar + SuffixSuccess, opIdentitySubmit + SuffixSuccess:
		profile := action.Payload.(models.UserProfile)
		return ProfileState{Profile: &profile}
	case ActionAvatarUpdate:
		return withAvatar(state, action.Payload.(*string))
	case opAvatar + SuffixError:
		return withAvatar(state, action.Payload.(*string))
	}
	return state
}

func withAvatar(state ProfileState, avatarURL *string) ProfileState {
	if state.Profile == nil {
		return state
	}
	profile := *state.Profile
	profile.AvatarURL = avatarURL
	return ProfileState{Profile: &profile}
}
