package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/The127/ioc"
)

// DbService owns the one transaction of a request scope. The scope close
// handler commits it, so every repository write within a request is atomic.
type DbService interface {
	// GetTx returns the scope's transaction, beginning it on first use.
	GetTx() (*sql.Tx, error)
	// Close commits the transaction if one was begun.
	Close() error
}

type dbService struct {
	tx       *sql.Tx
	provider *ioc.DependencyProvider
}

func NewDbService(provider *ioc.DependencyProvider) DbService {
	return &dbService{
		provider: provider,
	}
}

func (s *dbService) GetTx() (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}

	db := ioc.GetDependency[*sql.DB](s.provider)
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	s.tx = tx
	return s.tx, nil
}

func (s *dbService) Close() error {
	if s.tx == nil {
		return nil
	}

	commitErr := s.tx.Commit()
	if commitErr == nil {
		return nil
	}

	// a handler may roll back itself, so a done transaction is not an error
	if rollbackErr := s.tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
		return fmt.Errorf("rolling back after failed commit: %w", errors.Join(commitErr, rollbackErr))
	}
	if errors.Is(commitErr, sql.ErrTxDone) {
		return nil
	}

	return fmt.Errorf("committing transaction: %w", commitErr)
}
