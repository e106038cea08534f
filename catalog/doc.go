// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog loads and holds the immutable food dataset.

The catalog is a JSON array of food records read once at startup:

	foods, err := catalog.Load(cfg.CatalogPath)

Load lower-cases every vocabulary field (cuisine, heaviness, meal type,
dietary violations, allergens, ingredients) so downstream set checks
never re-normalize. Display names keep their original case.

The Store is read-only after construction and shared by reference; it
has no mutation methods.
*/
package catalog
