package sql

// InTransaction reports whether repo was handed out by WithinTransaction.
func InTransaction(repo interface{ inTransaction() bool }) bool {
	return repo.inTransaction()
}
