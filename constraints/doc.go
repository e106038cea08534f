// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package constraints merges per-member dining constraints into a single
// group constraint set and hard-filters the food catalog against it.
//
// Constraints split into two tiers. Hard constraints (dietary restrictions,
// allergens, avoided ingredients) are unioned across the group: if any one
// member cannot eat something, nobody is offered it. Soft preferences
// (favorite cuisines, spice tolerance) are collected with repetition so that
// a cuisine loved by three members weighs more than one loved by a single
// member; they influence ranking but never remove candidates.
//
// Incoming profile tokens use the app's UPPERCASE enum vocabulary
// (VEGETARIAN, GLUTEN_FREE, TREE_NUTS, ...) and are normalized here to the
// lowercase catalog vocabulary. Legacy tokens are tolerated: MILK maps to
// dairy, and the retired KOSHER dietary token is dropped silently so old
// profiles keep working. Unknown tokens pass through lower-cased rather than
// erroring, since the catalog simply won't match them.
package constraints
