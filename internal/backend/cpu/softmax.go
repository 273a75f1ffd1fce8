package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/tensor"
)

// SoftmaxLoss computes the softmax cross-entropy loss and its gradient.
//
// Mathematical formulation:
//
//	loss = -1/N * Σ_i log(softmax(scores_i)[y_i])
//	dscores = (softmax(scores) - one_hot(y)) / N
//
// scores has shape [N, C]; y holds N class indices in [0, C).
// Row maxima are subtracted before exponentiation (log-sum-exp trick), and
// the loss is accumulated in float64 regardless of the scores dtype.
func (cpu *CPUBackend) SoftmaxLoss(scores *tensor.RawTensor, y []int) (float64, *tensor.RawTensor) {
	requireRank("softmax loss", "scores", scores, 2)

	N, C := scores.Shape()[0], scores.Shape()[1]
	if len(y) != N {
		panic(fmt.Sprintf("softmax loss: got %d labels for %d samples", len(y), N))
	}
	for i, label := range y {
		if label < 0 || label >= C {
			panic(fmt.Sprintf("softmax loss: label %d at index %d out of range [0, %d)", label, i, C))
		}
	}

	dscores := tensor.MustRaw(scores.Shape(), scores.DType())

	var loss float64
	switch scores.DType() {
	case tensor.Float32:
		loss = softmaxLoss(tensor.Data[float32](dscores), tensor.Data[float32](scores), y, N, C)
	case tensor.Float64:
		loss = softmaxLoss(tensor.Data[float64](dscores), tensor.Data[float64](scores), y, N, C)
	default:
		panic(fmt.Sprintf("softmax loss: unsupported dtype %s", scores.DType()))
	}
	return loss, dscores
}

func softmaxLoss[T tensor.Float](dscores, scores []T, y []int, N, C int) float64 {
	probs := make([]float64, C)
	total := 0.0

	for n := 0; n < N; n++ {
		row := scores[n*C : (n+1)*C]

		maxVal := float64(row[0])
		for _, v := range row[1:] {
			maxVal = math.Max(maxVal, float64(v))
		}

		sum := 0.0
		for j, v := range row {
			probs[j] = math.Exp(float64(v) - maxVal)
			sum += probs[j]
		}

		// -log p[y] = log Σ exp(s_j - max) - (s_y - max)
		total += math.Log(sum) - (float64(row[y[n]]) - maxVal)

		grad := dscores[n*C : (n+1)*C]
		for j := range grad {
			g := probs[j] / sum
			if j == y[n] {
				g--
			}
			grad[j] = T(g / float64(N))
		}
	}

	return total / float64(N)
}
