package features

import "gonum.org/v1/gonum/stat"

// minScale guards against dividing by a vanishing standard deviation.
const minScale = 1e-12

// Standardizer rescales vectors to zero mean and unit variance using
// statistics fixed at fit time.
type Standardizer struct {
	Mean  Vector
	Scale Vector
}

// FitStandardizer computes per-feature mean and population standard
// deviation over rows. Constant features get a scale of 1 so they map to 0.
func FitStandardizer(rows []Vector) Standardizer {
	var s Standardizer
	for i := range s.Scale {
		s.Scale[i] = 1
	}
	if len(rows) == 0 {
		return s
	}
	column := make([]float64, len(rows))
	for f := 0; f < Size; f++ {
		for r, row := range rows {
			column[r] = row[f]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		s.Mean[f] = mean
		if std > minScale {
			s.Scale[f] = std
		}
	}
	return s
}

// Transform standardizes v with the fitted statistics.
func (s Standardizer) Transform(v Vector) Vector {
	var out Vector
	for i := range v {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v[i] - s.Mean[i]) / scale
	}
	return out
}

// TransformAll standardizes every row.
func (s Standardizer) TransformAll(rows []Vector) []Vector {
	out := make([]Vector, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
