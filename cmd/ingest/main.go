// Command ingest imports spreadsheet exports into the consolidated metrics
// store and reports on what is there.
//
// Usage:
//
//	ingest import --dir ./data --default-year 2025
//	ingest import --s3-bucket reports --s3-prefix 2025/
//	ingest summary
//	ingest validate relatorio.xlsx
//	ingest serve
package main

func main() {
	Execute()
}
