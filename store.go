package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const maxAttempts = 3

var retryDelay = 2 * time.Second

// Store is a SQL-backed catalog: product_categories holds the groups,
// catalog_products the items, both ordered by their ids.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// OpenStore opens a store from mysql://DSN or sqlite://PATH.
func OpenStore(source string) (*Store, error) {
	driver, dsn, ok := strings.Cut(source, "://")
	if !ok {
		return nil, fmt.Errorf("catalog store %q: missing driver prefix", source)
	}
	switch driver {
	case "mysql":
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("catalog store: %w", err)
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("catalog store: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog store: %w", err)
	}
	return NewStore(db), nil
}

func (pdb *Store) Close() error {
	return pdb.db.Close()
}

func (pdb *Store) LoadCatalog(ctx context.Context) (*Catalog, error) {
	var c *Catalog
	err := withRetry(ctx, func() error {
		var err error
		c, err = pdb.loadCatalog(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// withRetry runs op up to maxAttempts times, waiting retryDelay between
// attempts that fail with a transient error.
func withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempts := 0; attempts < maxAttempts; attempts++ {
		err = op()
		if err == nil || !isTransientError(err) {
			return err
		}
		if attempts == maxAttempts-1 {
			break
		}

		logger.Warn("catalog load failed, retrying",
			zap.Int("attempt", attempts+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return err
}

func (pdb *Store) loadCatalog(ctx context.Context) (*Catalog, error) {
	query := `SELECT c.name, p.code, p.name, p.rate, p.discount, p.final_rate, p.image
            FROM catalog_products p
            JOIN product_categories c ON p.category_id = c.category_id
            ORDER BY c.category_id ASC, p.product_id ASC`
	rows, err := pdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := &Catalog{}
	for rows.Next() {
		var group string
		var code, name, rate, discount, finalRate, image sql.NullString
		if err := rows.Scan(&group, &code, &name, &rate, &discount, &finalRate, &image); err != nil {
			return nil, err
		}

		if n := len(c.Groups); n == 0 || c.Groups[n-1].Name != group {
			c.Groups = append(c.Groups, Group{Name: group})
		}
		g := &c.Groups[len(c.Groups)-1]
		key := ItemKey{Group: group, Index: len(g.Products)}

		listRate, _ := parseDecimal(rate.String)
		disc, _ := parseDecimal(discount.String)
		final, ok := parseDecimal(finalRate.String)
		if !ok && finalRate.String != "" {
			logger.Debug("unparsable final rate, using 0",
				zap.String("group", key.Group),
				zap.Int("index", key.Index),
				zap.String("value", finalRate.String))
		}

		g.Products = append(g.Products, Product{
			Code:      code.String,
			Name:      name.String,
			ListRate:  MoneyFromDecimal(listRate),
			Discount:  disc,
			FinalRate: MoneyFromDecimal(final),
			Image:     image.String,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// isTransientError checks if the error is a transient MySQL error.
func isTransientError(err error) bool {
	var driverErr *mysql.MySQLError
	if !errors.As(err, &driverErr) {
		return errors.Is(err, mysql.ErrInvalidConn)
	}
	switch driverErr.Number {
	case 1040, // ER_CON_COUNT_ERROR: Too many connections
		1205, // ER_LOCK_WAIT_TIMEOUT: Lock wait timeout exceeded
		1213, // ER_LOCK_DEADLOCK: Deadlock found
		2003, // CR_CONN_HOST_ERROR: Can't connect to MySQL server on 'host'
		2006, // CR_SERVER_GONE_ERROR: MySQL server has gone away
		2013: // CR_SERVER_LOST: Lost connection to MySQL server during query
		return true
	}
	return false
}
