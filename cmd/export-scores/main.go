package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Утилита для выгрузки таблицы scores в XLSX для офлайн-анализа.
// Подключение настраивается теми же переменными окружения, что и сервер.

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOrDefault("DATABASE_HOST", "localhost"),
		envOrDefault("DATABASE_PORT", "5432"),
		envOrDefault("DATABASE_USER", "postgres"),
		os.Getenv("DATABASE_PASSWORD"),
		envOrDefault("DATABASE_DBNAME", "puzzle_db"),
		envOrDefault("DATABASE_SSLMODE", "disable"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	rows, err := db.Query(`SELECT id, user_id, nickname, moves, time_ms, created_at FROM scores ORDER BY id`)
	if err != nil {
		log.Fatalf("Failed to query scores: %v", err)
	}
	defer rows.Close()

	f := excelize.NewFile()
	sheet := "Scores"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		log.Fatalf("Failed to rename sheet: %v", err)
	}

	headers := []string{"ID", "User ID", "Nickname", "Moves", "Time (ms)", "Created At (ms)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	rowNum := 2
	for rows.Next() {
		var (
			id        int64
			userID    string
			nickname  string
			moves     int
			timeMs    int64
			createdAt int64
		)
		if err := rows.Scan(&id, &userID, &nickname, &moves, &timeMs, &createdAt); err != nil {
			log.Fatalf("Failed to scan row: %v", err)
		}

		values := []interface{}{id, userID, nickname, moves, timeMs, createdAt}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
		rowNum++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate rows: %v", err)
	}

	outPath := envOrDefault("EXPORT_PATH", "scores_export.xlsx")
	if err := f.SaveAs(outPath); err != nil {
		log.Fatalf("Failed to save export: %v", err)
	}

	fmt.Printf("Exported %d score(s) to %s\n", rowNum-2, outPath)
}
