package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"mouthpiece/internal/timeline"
)

type tsvRow struct {
	start float64
	shape timeline.Shape
}

// tsvParser reads `start<TAB>shape` rows. The export carries no end times,
// so each cue ends where the next one starts and the last cue ends at the
// reported audio duration.
type tsvParser struct{}

func (tsvParser) Parse(raw []byte, reportedDuration float64) (timeline.Timeline, error) {
	rows, err := readTSVRows(raw)
	if err != nil {
		return timeline.Timeline{}, err
	}
	if len(rows) == 0 {
		return timeline.New(nil, reportedDuration), nil
	}
	last := rows[len(rows)-1]
	if reportedDuration <= last.start {
		return timeline.Timeline{}, malformed("tsv",
			fmt.Sprintf("reported duration %.3f does not extend past last row start %.3f", reportedDuration, last.start), nil)
	}

	cues := make([]timeline.Cue, len(rows))
	for i, row := range rows {
		end := reportedDuration
		if i+1 < len(rows) {
			end = rows[i+1].start
		}
		cues[i] = timeline.Cue{Start: row.start, End: end, Shape: row.shape}
	}
	return timeline.New(cues, reportedDuration), nil
}

func readTSVRows(raw []byte) ([]tsvRow, error) {
	var rows []tsvRow
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, malformed("tsv", fmt.Sprintf("line %d: expected 2 columns, got %d", line, len(fields)), nil)
		}
		start, err := parseSeconds(fields[0])
		if err != nil {
			return nil, malformed("tsv", fmt.Sprintf("line %d", line), err)
		}
		shape, err := timeline.ParseShape(fields[1])
		if err != nil {
			return nil, malformed("tsv", fmt.Sprintf("line %d", line), err)
		}
		rows = append(rows, tsvRow{start: start, shape: shape})
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed("tsv", "read rows", err)
	}
	return rows, nil
}
