package main

import (
	"github.com/tmwangi/elimu/storage/database"
)

var migrateCmdFunc = database.MigrateCmd // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrateCmdFunc(cli.db, args[0], arguments...)
}
