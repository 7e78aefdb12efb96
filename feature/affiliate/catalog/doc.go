// Package catalog stores canonical products in the catalog_products table.
//
// The schema is auto-migrated, or only verified when auto migration is
// disabled because another system owns the catalog.
package catalog
