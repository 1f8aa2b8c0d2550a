package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"user_service/internal/events"
	"user_service/internal/lib/hasher"
	"user_service/internal/lib/jwt"
	sl "user_service/internal/lib/logger"
	"user_service/internal/models"
	"user_service/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyUpdate        = errors.New("empty update")
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type Users struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	publisher   EventPublisher
	tokenTTL    time.Duration
	tokenSecret string
}

type UserSaver interface {
	SaveUser(ctx context.Context, username, email, passHash string) (uid int64, err error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	publisher EventPublisher,
	tokenTTL time.Duration,
	tokenSecret string,
) *Users {
	return &Users{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		publisher:   publisher,
		tokenTTL:    tokenTTL,
		tokenSecret: tokenSecret,
	}
}

// * Register хеширует пароль и создаёт пользователя.
// Уникальность username/email обеспечивает хранилище, гонки в том числе.
func (u *Users) Register(
	ctx context.Context,
	username, email, pass string,
) (int64, error) {
	const op = "users.Register"

	log := u.log.With(
		slog.String("op", op),
	)

	log.Info("registering new user")

	passHash, err := hasher.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := u.usrSaver.SaveUser(ctx, username, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	u.publish(ctx, log, models.Event{
		Type:       events.TypeUserRegistered,
		UserID:     id,
		Email:      email,
		OccurredAt: time.Now(),
	})

	log.Info("user registered", slog.Int64("uid", id))

	return id, nil
}

// * Login проверяет учетные данные и возвращает access токен.
// "Нет такого пользователя" и "неверный пароль" дают одну и ту же
// ошибку, чтобы не подсказывать, какой из email зарегистрирован.
func (u *Users) Login(
	ctx context.Context,
	email, password string,
) (string, error) {
	const op = "users.Login"

	log := u.log.With(slog.String("op", op))

	user, err := u.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !hasher.Verify(user.PassHash, password) {
		log.Info("invalid credentials")
		return "", ErrInvalidCredentials
	}

	accessToken, err := jwt.NewToken(user.ID, u.tokenSecret, u.tokenTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return accessToken, nil
}

func (u *Users) Profile(ctx context.Context, userID int64) (models.User, error) {
	const op = "users.Profile"

	log := u.log.With(slog.String("op", op))

	user, err := u.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", slog.Int64("uid", userID))
			return models.User{}, ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// * UpdateProfile применяет частичное обновление. Смена пароля
// перехеширует его; username/email проверяются на уникальность
// тем же констрейнтом, что и при регистрации.
func (u *Users) UpdateProfile(
	ctx context.Context,
	userID int64,
	username, email, password *string,
) (models.User, error) {
	const op = "users.UpdateProfile"

	log := u.log.With(
		slog.String("op", op),
		slog.Int64("uid", userID),
	)

	upd := models.UserUpdate{
		Username: username,
		Email:    email,
	}

	if password != nil {
		passHash, err := hasher.Hash(*password)
		if err != nil {
			log.Error("failed to generate password hash", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		upd.PassHash = &passHash
	}

	if upd.IsEmpty() {
		return models.User{}, ErrEmptyUpdate
	}

	if err := u.usrSaver.UpdateUser(ctx, userID, upd); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			log.Warn("username or email already taken")
			return models.User{}, ErrUserExists
		case errors.Is(err, storage.ErrUserNotFound):
			log.Warn("user not found")
			return models.User{}, ErrUserNotFound
		default:
			log.Error("failed to update user", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	user, err := u.usrProvider.UserByID(ctx, userID)
	if err != nil {
		log.Error("failed to reload user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated")

	return user, nil
}

// * DeleteAccount удаляет пользователя. Повторное удаление того же
// аккаунта — штатный случай: хранилище отвечает ErrUserNotFound.
func (u *Users) DeleteAccount(ctx context.Context, userID int64) error {
	const op = "users.DeleteAccount"

	log := u.log.With(
		slog.String("op", op),
		slog.Int64("uid", userID),
	)

	if err := u.usrSaver.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return ErrUserNotFound
		}

		log.Error("failed to delete user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	u.publish(ctx, log, models.Event{
		Type:       events.TypeUserDeleted,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	log.Info("account deleted")

	return nil
}

// * ListUsers возвращает страницу пользователей для админского списка.
// page < 1 приводится к 1, limit — к диапазону [1, 100], по умолчанию 10.
func (u *Users) ListUsers(
	ctx context.Context,
	page, limit int,
) ([]models.User, int64, error) {
	const op = "users.ListUsers"

	log := u.log.With(slog.String("op", op))

	page, limit = ClampPage(page, limit)

	offset := (page - 1) * limit

	list, err := u.usrProvider.ListUsers(ctx, offset, limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	total, err := u.usrProvider.CountUsers(ctx)
	if err != nil {
		log.Error("failed to count users", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return list, total, nil
}

// * ClampPage приводит параметры пагинации к допустимым границам:
// page >= 1, limit в [1, 100], по умолчанию 10.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit
}

// * publish отправляет событие в очередь best-effort: запись в базе
// уже зафиксирована, поэтому сбой брокера только логируется.
func (u *Users) publish(ctx context.Context, log *slog.Logger, event models.Event) {
	if u.publisher == nil {
		return
	}

	if err := u.publisher.Publish(ctx, event); err != nil {
		log.Error("failed to publish event", slog.String("type", event.Type), sl.Err(err))
	}
}
