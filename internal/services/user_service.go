package services

import (
	"context"
	"errors"
	"fmt"

	"lendbook/internal/models"
	"lendbook/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// PresenceSource answers online-membership queries. Satisfied by the
// realtime presence tracker.
type PresenceSource interface {
	IsOnline(userID string) bool
}

type UserService struct {
	users    store.UserStore
	friends  store.FriendStore
	presence PresenceSource
	logger   zerolog.Logger
}

func NewUserService(users store.UserStore, friends store.FriendStore, presence PresenceSource, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		friends:  friends,
		presence: presence,
		logger:   logger,
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrInvalidArgument)
	}

	taken, err := s.users.ExistsByEmailOrUsername(ctx, nil, req.Email, req.Username)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(req.Username, req.Email, string(hashedPassword))
	if err := s.users.Create(ctx, nil, user); err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	user, err := s.users.FindByEmail(ctx, nil, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.Find(ctx, nil, userID)
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}
	return user, nil
}

func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return fmt.Errorf("%w: cannot add yourself as a friend", ErrInvalidArgument)
	}
	if _, err := s.users.Find(ctx, nil, friendID); err != nil {
		return translateStoreErr(err, "friend")
	}
	if err := s.friends.Add(ctx, nil, userID, friendID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("friend_id", friendID).Msg("Error adding friend")
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("friend_id", friendID).Msg("Friend added")
	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friends.Remove(ctx, nil, userID, friendID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("friend_id", friendID).Msg("Error removing friend")
		return err
	}
	return nil
}

func (s *UserService) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return s.friends.ListIDs(ctx, nil, userID)
}

func (s *UserService) ListFriends(ctx context.Context, userID string) ([]*models.User, error) {
	ids, err := s.friends.ListIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	friends := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		friend, err := s.users.Find(ctx, nil, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

// OnlineFriends intersects the user's friend list with the presence
// tracker's online set.
func (s *UserService) OnlineFriends(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.friends.ListIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	online := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.presence.IsOnline(id) {
			online = append(online, id)
		}
	}
	return online, nil
}
