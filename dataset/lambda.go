package dataset

import "fmt"

// ValuePredictor supplies state-value estimates for bootstrapping. One
// call receives the frame-stacked next observations of a whole forward
// walk and returns one value per row. Algorithm implementations satisfy
// this without the data layer depending on them.
type ValuePredictor interface {
	PredictValue(observations [][]float32) ([]float32, error)
}

// LambdaReturn walks the forward chain from t to the episode end and
// computes the lambda-weighted average of the 1..M step bootstrapped
// returns. The i-th hop contributes R_i, the discounted reward sum up
// to that hop plus gamma^(i+1) times the predicted value of its next
// observation; the final hop's bootstrap is zero since the walk ends at
// a true episode end. Costs O(M) plus one batched predictor call.
func LambdaReturn(t *Transition, predictor ValuePredictor, gamma float64, lambda float64, nFrames int) (float64, error) {
	return lambdaReturn(t, predictor, gamma, lambda, nFrames, 0)
}

// LambdaReturnWithHorizon truncates the walk after at most horizon
// hops. The final bootstrap is zeroed only when the walk reached the
// episode end; a walk cut off at the horizon keeps its predicted value,
// since the episode continues past the cutoff.
func LambdaReturnWithHorizon(t *Transition, predictor ValuePredictor, gamma float64, lambda float64, nFrames int, horizon int) (float64, error) {
	if horizon < 1 {
		return 0, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}
	return lambdaReturn(t, predictor, gamma, lambda, nFrames, horizon)
}

func lambdaReturn(t *Transition, predictor ValuePredictor, gamma float64, lambda float64, nFrames int, horizon int) (float64, error) {
	if nFrames < 1 {
		return 0, fmt.Errorf("nFrames must be at least 1, got %d", nFrames)
	}
	ep := t.episode
	chain := ep.Transitions()
	p := t.index

	m := ep.Size() - p
	if horizon > 0 && horizon < m {
		m = horizon
	}
	reachedEnd := m == ep.Size()-p

	observations := make([][]float32, m)
	returns := make([]float64, m)
	acc := 0.0
	discount := 1.0
	for i := 0; i < m; i++ {
		hop := chain[p+i]
		observations[i] = ep.stackedObservationAt(p+i+1, nFrames)
		acc += discount * float64(hop.NextReward())
		discount *= gamma
		returns[i] = acc
	}

	values, err := predictor.PredictValue(observations)
	if err != nil {
		return 0, fmt.Errorf("predict value: %w", err)
	}
	if len(values) != m {
		return 0, fmt.Errorf("%w: predictor returned %d values for %d observations", ErrShapeMismatch, len(values), m)
	}

	bootstrap := gamma
	for i := 0; i < m; i++ {
		v := float64(values[i])
		if i == m-1 && reachedEnd {
			v = 0.0
		}
		returns[i] += bootstrap * v
		bootstrap *= gamma
	}

	weight := 1.0
	out := 0.0
	for i := 0; i < m-1; i++ {
		out += (1.0 - lambda) * weight * returns[i]
		weight *= lambda
	}
	out += weight * returns[m-1]
	return out, nil
}
