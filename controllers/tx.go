package controllers

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withRowLock adds SELECT ... FOR UPDATE on engines that support it, so two
// concurrent attempts at the same transition serialize and the loser observes
// the committed state. SQLite (tests) serializes writers on its own and does
// not accept the clause.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
