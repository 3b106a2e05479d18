package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/nbforce/internal/md"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv.zst"
	finalFile    = "final.csv.zst"
)

var sampleHeader = []string{"step", "time", "potential", "kinetic", "total", "temperature"}

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
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Temperature float64            `json:"temperature"`
	NAtom       int                `json:"natom"`
	EnergyDrift float64            `json:"energy_drift"`
	Energies    map[string]float64 `json:"energies,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Save writes the metadata, the energy samples and the final positions and
// velocities of a run into a new run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, result *md.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.EnergyDrift = result.EnergyDrift
	if meta.NAtom == 0 {
		meta.NAtom = len(result.Positions) / 3
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(result.Samples)+1)
	rows = append(rows, sampleHeader)
	for _, smp := range result.Samples {
		rows = append(rows, []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			formatFloat(smp.Potential),
			formatFloat(smp.Kinetic),
			formatFloat(smp.Total),
			formatFloat(smp.Temperature),
		})
	}
	if err := writeCompressedCSV(filepath.Join(runDir, samplesFile), rows); err != nil {
		return "", err
	}

	rows = [][]string{{"x", "y", "z", "vx", "vy", "vz"}}
	for i := 0; i+2 < len(result.Positions); i += 3 {
		row := make([]string, 0, 6)
		for k := 0; k < 3; k++ {
			row = append(row, formatFloat(result.Positions[i+k]))
		}
		for k := 0; k < 3; k++ {
			v := 0.0
			if i+k < len(result.Velocities) {
				v = result.Velocities[i+k]
			}
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	if err := writeCompressedCSV(filepath.Join(runDir, finalFile), rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads the energy samples of a run.
func (s *Store) LoadSamples(runID string) ([]md.Sample, error) {
	records, err := readCompressedCSV(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []md.Sample{}, nil
	}
	samples := make([]md.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(sampleHeader) {
			return nil, fmt.Errorf("storage: sample row %d has %d fields", i+1, len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("storage: sample row %d: %w", i+1, err)
		}
		vals, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("storage: sample row %d: %w", i+1, err)
		}
		samples = append(samples, md.Sample{
			Step:        step,
			Time:        vals[0],
			Potential:   vals[1],
			Kinetic:     vals[2],
			Total:       vals[3],
			Temperature: vals[4],
		})
	}
	return samples, nil
}

// LoadFinal reads the final positions and velocities of a run.
func (s *Store) LoadFinal(runID string) (pos, vel []float64, err error) {
	records, err := readCompressedCSV(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil
	}
	for i, record := range records[1:] {
		vals, err := parseFloats(record)
		if err != nil || len(vals) != 6 {
			return nil, nil, fmt.Errorf("storage: atom row %d is malformed", i+1)
		}
		pos = append(pos, vals[:3]...)
		vel = append(vel, vals[3:]...)
	}
	return pos, vel, nil
}

func writeCompressedCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	w := csv.NewWriter(zw)
	if err := w.WriteAll(rows); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func readCompressedCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return csv.NewReader(io.Reader(zr)).ReadAll()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
