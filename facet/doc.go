// Package facet implements the multi-dimensional faceted filter over item
// attributes: declarative filter state, dimension-agnostic evaluation driven
// by a registry of accessors, order-preserving narrowing, and facet option
// counts in both global and contextual scope.
//
// Filtering is exact-match over discrete attribute values; numeric axes
// participate through registered bucketers. An optional roaring-bitmap
// posting index accelerates narrowing and global counts over a fixed
// collection order.
package facet
