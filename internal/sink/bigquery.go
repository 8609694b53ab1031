package sink

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// BigQueryConfig identifies the destination table
type BigQueryConfig struct {
	ProjectID       string
	DatasetID       string
	TableID         string
	CredentialsPath string // empty uses application default credentials
}

// rowInserter is the part of *bigquery.Inserter the sink uses
type rowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// BigQuerySink streams records into a BigQuery table
type BigQuerySink struct {
	client   *bigquery.Client
	inserter rowInserter
	table    string
	log      zerolog.Logger
}

// NewBigQuerySink connects to BigQuery for cfg's table
func NewBigQuerySink(ctx context.Context, cfg BigQueryConfig, log zerolog.Logger) (*BigQuerySink, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	table := fmt.Sprintf("%s.%s.%s", cfg.ProjectID, cfg.DatasetID, cfg.TableID)
	return &BigQuerySink{
		client:   client,
		inserter: client.Dataset(cfg.DatasetID).Table(cfg.TableID).Inserter(),
		table:    table,
		log:      log.With().Str("component", "bigquery_sink").Str("table", table).Logger(),
	}, nil
}

// Name returns the sink kind
func (s *BigQuerySink) Name() string {
	return "bigquery"
}

// Insert streams all records in one request
func (s *BigQuerySink) Insert(ctx context.Context, records []domain.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*bigQueryRow, len(records))
	for i := range records {
		rows[i] = &bigQueryRow{record: records[i]}
	}

	if err := s.inserter.Put(ctx, rows); err != nil {
		if insertErr := fromPutMultiError(err, records); insertErr != nil {
			s.log.Error().Int("rejected_rows", len(insertErr.Rows)).Msg("BigQuery rejected rows")
			return insertErr
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}

	s.log.Debug().Int("rows", len(records)).Msg("Rows streamed")
	return nil
}

// Close releases the client
func (s *BigQuerySink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// fromPutMultiError maps per-row insertion errors; nil when err is not row-level
func fromPutMultiError(err error, records []domain.RiskRecord) *InsertError {
	var multi bigquery.PutMultiError
	if !errors.As(err, &multi) {
		return nil
	}

	insertErr := &InsertError{Sink: "bigquery", Rows: make([]RowError, 0, len(multi))}
	for _, rowErr := range multi {
		messages := make([]string, 0, len(rowErr.Errors))
		for _, e := range rowErr.Errors {
			messages = append(messages, e.Error())
		}
		insertErr.Rows = append(insertErr.Rows, RowError{
			Index:  rowErr.RowIndex,
			Symbol: symbolAt(records, rowErr.RowIndex),
			Errors: messages,
		})
	}
	return insertErr
}

// bigQueryRow saves a record under the persisted field names
type bigQueryRow struct {
	record domain.RiskRecord
}

// Save implements bigquery.ValueSaver. Reruns append; rows carry no dedupe ID.
func (r *bigQueryRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"symbol":     r.record.Symbol,
		"date":       r.record.Date,
		"pnl":        r.record.PnL,
		"volatility": r.record.Volatility,
		"margin":     r.record.Margin,
		"type":       r.record.Type,
		"breach":     r.record.Breach,
	}, bigquery.NoDedupeID, nil
}
