package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravkern/internal/bench"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string        `json:"id"`
	Mode      string        `json:"mode"`
	Timestamp time.Time     `json:"timestamp"`
	Result    *bench.Result `json:"result"`
}

func (s *Store) Save(mode string, result *bench.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", mode, result.Strategy, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Mode:      mode,
		Timestamp: time.Now(),
		Result:    result,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeAccelerations(filepath.Join(runDir, "accel.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeAccelerations(path string, result *bench.Result) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	hasRef := len(result.ReferenceAccel) == len(result.KernelAccel)
	header := []string{"index"}
	if hasRef {
		header = append(header, "ref_ax", "ref_ay", "ref_az")
	}
	header = append(header, "ax", "ay", "az")
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i+2 < len(result.KernelAccel); i += 3 {
		row := []string{strconv.Itoa(i / 3)}
		if hasRef {
			for _, v := range result.ReferenceAccel[i : i+3] {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		for _, v := range result.KernelAccel[i : i+3] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadAccelerations reads back the stored acceleration rows. ref is nil for
// runs that skipped the reference path.
func (s *Store) LoadAccelerations(runID string) (ref, kernel [][3]float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "accel.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, [][3]float64{}, nil
	}

	hasRef := len(records[0]) == 7
	for _, record := range records[1:] {
		vals := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s: %w", runID, err)
			}
			vals = append(vals, v)
		}
		if hasRef {
			if len(vals) != 6 {
				return nil, nil, fmt.Errorf("storage: %s: short row %v", runID, record)
			}
			ref = append(ref, [3]float64{vals[0], vals[1], vals[2]})
			vals = vals[3:]
		}
		if len(vals) != 3 {
			return nil, nil, fmt.Errorf("storage: %s: short row %v", runID, record)
		}
		kernel = append(kernel, [3]float64{vals[0], vals[1], vals[2]})
	}
	return ref, kernel, nil
}
