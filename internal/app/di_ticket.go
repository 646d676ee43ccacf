package app

import (
	"fmt"

	ticketHTTP "github.com/allisson/helpdesk/internal/ticket/http"
	ticketRepository "github.com/allisson/helpdesk/internal/ticket/repository"
	ticketUsecase "github.com/allisson/helpdesk/internal/ticket/usecase"
)

// TicketUseCase returns the ticket use case instance.
func (c *Container) TicketUseCase() (ticketUsecase.UseCase, error) {
	var err error
	c.ticketUseCaseInit.Do(func() {
		c.ticketUseCase, err = c.initTicketUseCase()
		if err != nil {
			c.initErrors["ticketUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ticketUseCase"]; exists {
		return nil, storedErr
	}
	return c.ticketUseCase, nil
}

// TicketHandler returns the ticket HTTP handler.
func (c *Container) TicketHandler() (*ticketHTTP.TicketHandler, error) {
	var err error
	c.ticketHandlerInit.Do(func() {
		var useCase ticketUsecase.UseCase
		useCase, err = c.TicketUseCase()
		if err != nil {
			c.initErrors["ticketHandler"] = fmt.Errorf("failed to get ticket use case for ticket handler: %w", err)
			return
		}
		c.ticketHandler = ticketHTTP.NewTicketHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["ticketHandler"]; exists {
		return nil, storedErr
	}
	return c.ticketHandler, nil
}

func (c *Container) initTicketUseCase() (ticketUsecase.UseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ticket repository: %w", err)
	}

	var repo ticketUsecase.TicketRepository
	switch c.config.DBDriver {
	case "mysql":
		repo = ticketRepository.NewMySQLTicketRepository(db)
	case "postgres":
		repo = ticketRepository.NewPostgreSQLTicketRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	baseUseCase := ticketUsecase.NewTicketUseCase(repo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for ticket use case: %w", err)
		}
		return ticketUsecase.NewTicketUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
