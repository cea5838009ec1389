// Package model defines core types shared across the browsing engine.
//
// # Identity Types
//
//   - ItemID: Stable, pipeline-assigned identifier of a collection item
//   - Tier: One fidelity rung of an item's image ladder (micro..full)
//   - Status: Curation state of an item (pending/kept/rejected)
//
// # Data Types
//
//   - Item: One photo with geometry, categorical/tag/numeric attributes,
//     and per-tier resource locators
package model
