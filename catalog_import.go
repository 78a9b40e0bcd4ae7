package main

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS product_categories (
		category_id INTEGER NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_products (
		product_id INTEGER NOT NULL PRIMARY KEY,
		category_id INTEGER NOT NULL,
		code VARCHAR(64),
		name VARCHAR(255),
		rate VARCHAR(32),
		discount VARCHAR(32),
		final_rate VARCHAR(32),
		image VARCHAR(1024)
	)`,
}

func (pdb *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := pdb.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// ImportCatalog replaces the stored catalog with c in a single transaction.
// Ids follow catalog order so a later load returns the same ordering.
func (pdb *Store) ImportCatalog(ctx context.Context, c *Catalog) error {
	if err := pdb.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
		tx.Rollback()
		return fmt.Errorf("error clearing products: %v", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM product_categories`); err != nil {
		tx.Rollback()
		return fmt.Errorf("error clearing categories: %v", err)
	}

	productID := 0
	for gi, g := range c.Groups {
		categoryID := gi + 1
		_, err = tx.ExecContext(ctx, `INSERT INTO product_categories (category_id, name) VALUES (?, ?)`,
			categoryID, g.Name)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting category %q: %v", g.Name, err)
		}

		for _, p := range g.Products {
			productID++
			_, err = tx.ExecContext(ctx, `INSERT INTO catalog_products (product_id, category_id, code, name, rate, discount, final_rate, image) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				productID, categoryID, p.Code, p.Name, p.ListRate.String(), p.Discount.String(), p.FinalRate.String(), p.Image)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("error inserting product %q: %v", p.Name, err)
			}
		}
	}

	return tx.Commit()
}
