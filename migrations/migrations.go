// Package migrations встраивает SQL-миграции в бинарник, чтобы деплой не
// зависел от файлов на диске.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
