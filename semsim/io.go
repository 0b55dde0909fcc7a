package semsim

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCoefficientsCSV loads a structural coefficient matrix from a CSV file.
// The first row holds the variable names; each following row holds one row
// of B, so the file must contain exactly as many data rows as columns.
func LoadCoefficientsCSV(path string) (*StructuralModel, error) {
	// 1. Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// 2. Make CSV reader
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	// 3. Read header row
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}
	p := len(header) // number of variables

	var (
		data []float64 // flat data for mat.Dense
		row  int       // row counter
	)

	// 4. Read each data row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err) // +2 for header + 1-based
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}

		if len(record) != p {
			return nil, fmt.Errorf(
				"row %d: expected %d columns, got %d",
				row+2, p, len(record),
			)
		}

		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"parse float at row %d col %d (%q): %w",
					row+2, j+1, s, err,
				)
			}
			data = append(data, v)
		}
		row++
	}

	if row != p {
		return nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("coefficient matrix must be square: %d columns but %d data rows", p, row),
		}
	}

	// 5. Build the model
	B := mat.NewDense(p, p, data)
	return NewStructuralModel(B, header)
}

// WriteSamplesCSV writes a simulated n x p data matrix to CSV with one
// header row of variable names and one row per sample.
func WriteSamplesCSV(path string, samples *mat.Dense, varNames []string) error {
	rows, cols := samples.Dims()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush() // Ensure all buffered data is written

	// Write header
	header := make([]string, cols)
	for j := 0; j < cols; j++ {
		if len(varNames) == cols {
			header[j] = varNames[j]
		} else {
			header[j] = fmt.Sprintf("X%d", j+1)
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Write data rows
	for i := 0; i < rows; i++ {
		record := make([]string, cols)
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(samples.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary prints the model dimensions, variable names, coefficient
// matrix and stability condition to stdout.
func (m *StructuralModel) PrintSummary() {
	fmt.Println("        Structural Model Summary        ")

	p := m.Dim()
	fmt.Printf("Number of variables (p): %d\n", p)

	if len(m.VarNames) > 0 {
		fmt.Println("Variables:")
		for i, name := range m.VarNames {
			fmt.Printf("  %d: %s\n", i, name)
		}
	}

	fmt.Println("\nCoefficient matrix B:")
	fmt.Printf("%v\n", mat.Formatted(m.B, mat.Prefix("  ")))

	rep, err := m.Stability()
	if err != nil {
		fmt.Println("Stability check failed:", err)
		return
	}
	PrintStability(rep)
}

// PrintStability prints the eigenvalues and the spectral-radius stability
// condition in a formatted table.
func PrintStability(rep *StabilityReport) {
	fmt.Println("\n=== Stability Condition ===")
	fmt.Println("Eigenvalues of B:")
	for i, v := range rep.Eigenvalues {
		fmt.Printf("  lambda_%d = %10.6f %+10.6fi  |lambda| = %.6f\n",
			i+1, real(v), imag(v), cmplx.Abs(v))
	}
	fmt.Printf("Spectral radius: %.6f\n", rep.SpectralRadius)
	if rep.Stable {
		fmt.Println("Conclusion: STABLE (spectral radius < 1, equilibrium is well defined)")
	} else {
		fmt.Println("Conclusion: UNSTABLE (spectral radius >= 1, no equilibrium interpretation)")
	}
}
