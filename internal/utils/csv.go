package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/ports"
)

var klineCSVHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteKlinesCSV writes klines with a header row to w.
func WriteKlinesCSV(w io.Writer, klines []*domain.Kline) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(klineCSVHeader); err != nil {
		return err
	}
	for _, k := range klines {
		if err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339Nano),
			k.CloseTime.UTC().Format(time.RFC3339Nano),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteKlinesToCSV writes klines to filename, creating parent directories as needed.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for '%s': %w", filename, err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteKlinesCSV(file, klines); err != nil {
		file.Close()
		return fmt.Errorf("write '%s': %w", filename, err)
	}
	return file.Close()
}

// ReadKlinesCSV parses klines written by WriteKlinesCSV. All rows are final.
func ReadKlinesCSV(r io.Reader) ([]*domain.Kline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(klineCSVHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty kline csv", ports.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidInput, err)
	}
	if header[0] != klineCSVHeader[0] {
		return nil, fmt.Errorf("%w: unexpected csv header %v", ports.ErrInvalidInput, header)
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrInvalidInput, err)
		}

		k, err := parseKlineRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ports.ErrInvalidInput, line, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// ReadKlinesFromCSV opens filename and parses it with ReadKlinesCSV.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadKlinesCSV(file)
}

func parseKlineRecord(record []string) (*domain.Kline, error) {
	openTime, err := time.Parse(time.RFC3339Nano, record[0])
	if err != nil {
		return nil, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := time.Parse(time.RFC3339Nano, record[1])
	if err != nil {
		return nil, fmt.Errorf("close_time: %w", err)
	}

	values := make([]float64, 5)
	for i, field := range record[4:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", klineCSVHeader[4+i], err)
		}
		values[i] = v
	}

	return &domain.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    record[2],
		Interval:  record[3],
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		IsFinal:   true,
	}, nil
}
