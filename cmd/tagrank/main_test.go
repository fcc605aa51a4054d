package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/veridex/tagrank/core"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  core.Value
	}{
		{"1987", core.Int(1987)},
		{"-3", core.Int(-3)},
		{"8.5", core.Float(8.5)},
		{"true", core.Bool(true)},
		{"False", core.Bool(false)},
		{"Comedy", core.String("Comedy")},
		{"  padded  ", core.String("padded")},
		{"", core.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseValue(tt.input)))
		})
	}
}

func TestParseWhere(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		tags, err := parseWhere([]string{"Subject=Comedy", "Year=1987"})
		require.NoError(t, err)
		assert.True(t, tags["Subject"].Equal(core.String("Comedy")))
		assert.True(t, tags["Year"].Equal(core.Int(1987)))
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseWhere([]string{"SubjectComedy"})
		assert.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseWhere([]string{"=Comedy"})
		assert.Error(t, err)
	})

	t.Run("value containing equals", func(t *testing.T) {
		tags, err := parseWhere([]string{"Formula=a=b"})
		require.NoError(t, err)
		assert.True(t, tags["Formula"].Equal(core.String("a=b")))
	})
}

func TestRecordsFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	data := "Title,Subject,Year\nAirplane,Comedy,1980\nThe Thing,Horror,1982\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Run("content-derived identifiers", func(t *testing.T) {
		records, err := recordsFromCSV(path, "", "")
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.True(t, records[0].Tags["Subject"].Equal(core.String("Comedy")))
		assert.True(t, records[0].Tags["Year"].Equal(core.Int(1980)))
		assert.NotEmpty(t, records[0].Id)
		assert.NotEqual(t, records[0].Id, records[1].Id)
	})

	t.Run("id column", func(t *testing.T) {
		records, err := recordsFromCSV(path, "Title", "")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, core.ID("Airplane"), records[0].Id)
	})

	t.Run("text column", func(t *testing.T) {
		reviewPath := filepath.Join(dir, "reviews.csv")
		reviews := "Title,Review\nAirplane,Surely a classic.\n"
		require.NoError(t, os.WriteFile(reviewPath, []byte(reviews), 0644))

		records, err := recordsFromCSV(reviewPath, "Title", "Review")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Surely a classic.", records[0].Text)
		// The text column does not double as a tag.
		_, tagged := records[0].Tags["Review"]
		assert.False(t, tagged)
	})

	t.Run("unknown id column", func(t *testing.T) {
		_, err := recordsFromCSV(path, "Nope", "")
		assert.Error(t, err)
	})

	t.Run("unknown text column", func(t *testing.T) {
		_, err := recordsFromCSV(path, "", "Nope")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := recordsFromCSV(filepath.Join(dir, "absent.csv"), "", "")
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(empty, []byte("A,B\n"), 0644))

		records, err := recordsFromCSV(empty, "", "")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestNewEmbedder(t *testing.T) {
	t.Run("no flags means no embedder", func(t *testing.T) {
		embedder, err := newEmbedder("", "")
		require.NoError(t, err)
		assert.Nil(t, embedder)
	})

	t.Run("host and model build a client", func(t *testing.T) {
		embedder, err := newEmbedder("http://localhost:11434", "embeddinggemma")
		require.NoError(t, err)
		assert.NotNil(t, embedder)
	})

	t.Run("single flag falls back to defaults", func(t *testing.T) {
		embedder, err := newEmbedder("", "text-embedding-3-small")
		require.NoError(t, err)
		assert.NotNil(t, embedder)
	})
}

func TestIndexThenQuery(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "movies.csv")
	dbPath := filepath.Join(dir, "db")
	data := "Title,Subject,Year\nAirplane,Comedy,1980\nThe Thing,Horror,1982\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0644))

	app := newApp()
	require.NoError(t, app.Run([]string{
		"tagrank", "index", "--db", dbPath, "--csv", csvPath, "--id-column", "Title",
	}))

	require.NoError(t, app.Run([]string{
		"tagrank", "query", "--db", dbPath, "--where", "Subject=Comedy", "--limit", "1",
	}))
}

func TestQueryCommandValidation(t *testing.T) {
	err := newApp().Run([]string{"tagrank", "query", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--where or --text")
}

func TestReindexCommandValidation(t *testing.T) {
	app := newApp()

	t.Run("missing db flag fails", func(t *testing.T) {
		err := app.Run([]string{"tagrank", "reindex"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("invalid batch size fails", func(t *testing.T) {
		err := app.Run([]string{"tagrank", "reindex", "--db", t.TempDir(), "--batch-size", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})
}

func TestSetupLogger(t *testing.T) {
	newTestApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN", "Debug"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newTestApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newTestApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
