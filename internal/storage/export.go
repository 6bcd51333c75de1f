package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// TranscriptRow is one message of one thread in a parquet export
type TranscriptRow struct {
	Thread     string `json:"thread" parquet:"thread"`
	Seq        int64  `json:"seq" parquet:"seq"`
	Role       string `json:"role" parquet:"role"`
	Content    string `json:"content" parquet:"content"`
	ToolName   string `json:"tool_name" parquet:"tool_name,optional"`
	ToolCallID string `json:"tool_call_id" parquet:"tool_call_id,optional"`
	ToolCalls  string `json:"tool_calls" parquet:"tool_calls,optional"` // JSON encoded
}

// Transcript flattens the given threads, or all threads when none are named.
func (s *CheckpointStore) Transcript(threadIDs ...string) ([]TranscriptRow, error) {
	if len(threadIDs) == 0 {
		threadIDs = s.Threads()
	}

	var rows []TranscriptRow
	for _, id := range threadIDs {
		msgs, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown thread %s", id)
		}
		for i, m := range msgs {
			row := TranscriptRow{
				Thread:     id,
				Seq:        int64(i),
				Role:       m.Role,
				Content:    m.Content,
				ToolName:   m.ToolName,
				ToolCallID: m.ToolCallID,
			}
			if len(m.ToolCalls) > 0 {
				b, err := json.Marshal(m.ToolCalls)
				if err != nil {
					return nil, fmt.Errorf("failed to encode tool calls: %w", err)
				}
				row.ToolCalls = string(b)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ExportParquet writes the transcript of the given threads to w.
func (s *CheckpointStore) ExportParquet(w io.Writer, threadIDs ...string) (int, error) {
	rows, err := s.Transcript(threadIDs...)
	if err != nil {
		return 0, err
	}

	writer := parquet.NewGenericWriter[TranscriptRow](w)
	if _, err := writer.Write(rows); err != nil {
		return 0, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return len(rows), nil
}

// ReadTranscript loads a parquet transcript written by ExportParquet.
func ReadTranscript(path string) ([]TranscriptRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[TranscriptRow](pf)
	defer reader.Close()

	var records []TranscriptRow
	rows := make([]TranscriptRow, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}
