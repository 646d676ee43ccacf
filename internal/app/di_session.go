package app

import (
	"context"
	"fmt"

	"github.com/allisson/helpdesk/internal/config"
	"github.com/allisson/helpdesk/internal/keys"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	sessionHTTP "github.com/allisson/helpdesk/internal/session/http"
	sessionRepository "github.com/allisson/helpdesk/internal/session/repository"
	sessionService "github.com/allisson/helpdesk/internal/session/service"
	sessionUsecase "github.com/allisson/helpdesk/internal/session/usecase"
	userUsecase "github.com/allisson/helpdesk/internal/user/usecase"
)

// redisKeyPrefix namespaces every session key in Redis.
const redisKeyPrefix = "helpdesk:"

// TokenCodec returns the JWT codec. Sealed secrets are opened through the KMS key first.
func (c *Container) TokenCodec() (sessionService.TokenCodec, error) {
	var err error
	c.tokenCodecInit.Do(func() {
		c.tokenCodec, err = c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// SessionRepository returns the session ledger selected by SESSION_STORE and DB_DRIVER.
func (c *Container) SessionRepository() (sessionUsecase.SessionRepository, error) {
	var err error
	c.sessionRepoInit.Do(func() {
		c.sessionRepo, err = c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// SessionUseCase returns the token lifecycle manager.
func (c *Container) SessionUseCase() (sessionUsecase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// SessionSweeper returns the expired session sweeper run by the worker.
func (c *Container) SessionSweeper() (*sessionUsecase.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		var sessions sessionUsecase.SessionUseCase
		sessions, err = c.SessionUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get session use case for sweeper: %w", err)
			c.initErrors["sweeper"] = err
			return
		}
		c.sweeper = sessionUsecase.NewSweeper(sessions, c.config.SessionSweepInterval, c.Logger())
	})
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// AuthHandler returns the login, refresh and logout handler.
func (c *Container) AuthHandler() (*sessionHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

func (c *Container) initTokenCodec() (sessionService.TokenCodec, error) {
	secrets, err := keys.LoadTokenSecrets(
		context.Background(),
		c.config.TokenSecretsKMSKeyURI,
		c.config.AccessTokenSecret,
		c.config.RefreshTokenSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load token secrets: %w", err)
	}

	codec, err := sessionService.NewTokenCodec(sessionService.TokenCodecConfig{
		AccessSecret:  secrets.Access,
		RefreshSecret: secrets.Refresh,
		Issuer:        c.config.TokenIssuer,
		Audience:      c.config.TokenAudience,
		AccessTTL:     c.config.AccessTokenExpiration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	return codec, nil
}

func (c *Container) initSessionRepository() (sessionUsecase.SessionRepository, error) {
	switch c.config.SessionStore {
	case config.SessionStoreRedis:
		client, err := c.Redis()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis for session repository: %w", err)
		}
		return sessionRepository.NewRedisSessionRepository(client, redisKeyPrefix), nil
	case config.SessionStoreDatabase:
	default:
		return nil, fmt.Errorf("unsupported session store: %s", c.config.SessionStore)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return sessionRepository.NewMySQLSessionRepository(db), nil
	case "postgres":
		return sessionRepository.NewPostgreSQLSessionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initSessionUseCase() (sessionUsecase.SessionUseCase, error) {
	policy, err := sessionDomain.ParseRevocationPolicy(c.config.SessionReuseRevocationPolicy)
	if err != nil {
		return nil, err
	}

	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for session use case: %w", err)
	}
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for session use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for session use case: %w", err)
	}
	codec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for session use case: %w", err)
	}
	revocations, err := c.SessionMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get session metrics for session use case: %w", err)
	}

	baseUseCase := sessionUsecase.NewSessionUseCase(
		sessionUsecase.Config{
			RefreshTTL:        c.config.RefreshTokenExpiration,
			Policy:            policy,
			SlidingExpiration: c.config.SessionSlidingExpiration,
		},
		sessionRepo,
		userUsecase.NewPrincipalLookup(userRepo),
		outboxRepo,
		codec,
		sessionService.NewTokenHasher(),
		revocations,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return sessionUsecase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initAuthHandler() (*sessionHTTP.AuthHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for auth handler: %w", err)
	}
	sessions, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for auth handler: %w", err)
	}

	cookies := sessionHTTP.CookieConfig{
		Secure: c.config.CookieSecure,
		Domain: c.config.CookieDomain,
	}
	return sessionHTTP.NewAuthHandler(userUseCase, sessions, cookies, c.Logger()), nil
}
