package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"PairScope/internal/domain/models"
)

const adfMinPoints = 10

// MacKinnon (1994) approximate asymptotic p-value surface for the
// constant-only Dickey-Fuller distribution.
var (
	adfTauStar  = -1.61
	adfTauMin   = -18.83
	adfTauMax   = 2.74
	adfTauSmall = []float64{2.1659, 1.4412, 0.038269}
	adfTauLarge = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

// MacKinnon (2010) finite-sample critical value response surfaces,
// constant-only case: cv = b0 + b1/n + b2/n^2 + b3/n^3.
var adfCritSurface = map[string][4]float64{
	"1%":  {-3.43035, -6.5393, -16.786, -79.433},
	"5%":  {-2.86154, -2.8903, -4.234, -40.040},
	"10%": {-2.56677, -1.5384, -2.809, 0},
}

// ADFTest runs an Augmented Dickey-Fuller test with a constant term.
// Lag order is chosen by AIC up to the Schwert rule bound. Fewer than 10
// non-missing points yields ErrInsufficientData; numerical failures of
// the regression surface as descriptive errors, never panics.
func (e *Engine) ADFTest(xs []float64) (models.ADFResult, error) {
	clean := dropNaN(xs)
	if len(clean) < adfMinPoints {
		return models.ADFResult{}, fmt.Errorf(
			"adf test needs at least %d points, got %d: %w",
			adfMinPoints, len(clean), models.ErrInsufficientData)
	}

	n := len(clean)
	maxLag := int(math.Ceil(12.0 * math.Pow(float64(n)/100.0, 0.25)))
	// keep enough observations to fit the largest candidate model
	if hi := (n - 1) / 2; maxLag > hi-2 {
		maxLag = hi - 2
	}
	if maxLag < 0 {
		maxLag = 0
	}

	lag, err := selectLagAIC(clean, maxLag)
	if err != nil {
		return models.ADFResult{}, fmt.Errorf("adf lag selection: %w", err)
	}

	tau, nobs, err := adfTStat(clean, lag)
	if err != nil {
		return models.ADFResult{}, fmt.Errorf("adf regression: %w", err)
	}

	p := mackinnonP(tau)
	crit := make(map[string]float64, len(adfCritSurface))
	fn := float64(nobs)
	for level, b := range adfCritSurface {
		crit[level] = b[0] + b[1]/fn + b[2]/(fn*fn) + b[3]/(fn*fn*fn)
	}

	return models.ADFResult{
		Statistic:      tau,
		PValue:         p,
		Lags:           lag,
		NObs:           nobs,
		CriticalValues: crit,
		IsStationary:   p < 0.05,
	}, nil
}

// selectLagAIC fits the DF regression for every lag in [0, maxLag] over a
// common sample and picks the lag minimizing AIC.
func selectLagAIC(xs []float64, maxLag int) (int, error) {
	best, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		// common sample: start all candidates at maxLag so AICs compare
		y, X := dfDesign(xs, lag, maxLag)
		fit, err := olsFit(y, X)
		if err != nil {
			continue
		}
		nobs := float64(len(y))
		k := float64(X.RawMatrix().Cols)
		aic := nobs*math.Log(fit.ssr/nobs) + 2*k
		if aic < bestAIC {
			best, bestAIC = lag, aic
		}
	}
	if math.IsInf(bestAIC, 1) {
		return 0, fmt.Errorf("no candidate lag produced a solvable regression")
	}
	return best, nil
}

// adfTStat refits with the chosen lag over the full usable sample and
// returns the t statistic of the level coefficient.
func adfTStat(xs []float64, lag int) (tau float64, nobs int, err error) {
	y, X := dfDesign(xs, lag, lag)
	fit, err := olsFit(y, X)
	if err != nil {
		return 0, 0, err
	}
	if fit.se[0] == 0 || !isFinite(fit.se[0]) {
		return 0, 0, fmt.Errorf("degenerate level coefficient (zero standard error)")
	}
	return fit.beta[0] / fit.se[0], len(y), nil
}

// dfDesign builds the Dickey-Fuller regression for the given lag order,
// dropping the first `start+1` observations:
//
//	dx[t] = gamma*x[t-1] + sum_i phi_i*dx[t-i] + c + e[t]
//
// Column 0 is the lagged level, the constant is last.
func dfDesign(xs []float64, lag, start int) ([]float64, *mat.Dense) {
	n := len(xs)
	dx := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dx[i-1] = xs[i] - xs[i-1]
	}

	rows := len(dx) - start
	cols := lag + 2
	y := make([]float64, rows)
	X := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		t := r + start // index into dx
		y[r] = dx[t]
		X.Set(r, 0, xs[t]) // x[t-1] relative to dx[t]
		for i := 1; i <= lag; i++ {
			X.Set(r, i, dx[t-i])
		}
		X.Set(r, cols-1, 1)
	}
	return y, X
}

type olsResult struct {
	beta []float64
	se   []float64
	ssr  float64
}

// olsFit solves y = X*beta by least squares and returns coefficient
// standard errors from sigma^2 * (X'X)^-1.
func olsFit(y []float64, X *mat.Dense) (*olsResult, error) {
	rows, cols := X.Dims()
	if rows <= cols {
		return nil, fmt.Errorf("underdetermined system: %d rows, %d cols", rows, cols)
	}

	var qr mat.QR
	qr.Factorize(X)
	yv := mat.NewVecDense(rows, y)
	var betaV mat.VecDense
	if err := qr.SolveVecTo(&betaV, false, yv); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &betaV)
	ssr := 0.0
	for i := 0; i < rows; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}
	sigma2 := ssr / float64(rows-cols)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("invert X'X: %w", err)
	}

	beta := make([]float64, cols)
	se := make([]float64, cols)
	for j := 0; j < cols; j++ {
		beta[j] = betaV.AtVec(j)
		se[j] = math.Sqrt(sigma2 * xtxInv.At(j, j))
	}
	return &olsResult{beta: beta, se: se, ssr: ssr}, nil
}

// mackinnonP maps the tau statistic to an approximate p-value via the
// MacKinnon response surface for the constant-only case.
func mackinnonP(tau float64) float64 {
	switch {
	case tau > adfTauMax:
		return 1.0
	case tau < adfTauMin:
		return 0.0
	}
	coefs := adfTauLarge
	if tau <= adfTauStar {
		coefs = adfTauSmall
	}
	z, pow := 0.0, 1.0
	for _, c := range coefs {
		z += c * pow
		pow *= tau
	}
	return distuv.UnitNormal.CDF(z)
}
