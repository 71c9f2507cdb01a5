package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// AUC returns the area under the ROC curve for 0/1 labels and real-valued
// scores, computed from the Mann-Whitney rank sum with tied scores sharing
// their average rank. With only one class present the value is 0.5 and an
// UndefinedMetricWarning is raised.
func AUC(yTrue, scores *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, scores)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	order := rankOrder(scores, false)
	var posRankSum float64
	nPos := 0
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores.AtVec(order[j+1]) == scores.AtVec(order[i]) {
			j++
		}
		// ranks are 1-based
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(order[k]) == 1 {
				posRankSum += avg
				nPos++
			}
		}
		i = j + 1
	}

	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}
	u := posRankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix computes AUC for n×1 matrices.
func AUCMatrix(yTrue, scores mat.Matrix) (float64, error) {
	t, s, err := columnPair("AUCMatrix", yTrue, scores)
	if err != nil {
		return 0, err
	}
	return AUC(t, s)
}

// ROCCurve returns false and true positive rates at every distinct score
// threshold, starting from (0, 0) with threshold +Inf.
func ROCCurve(yTrue, scores *mat.VecDense) (fpr, tpr, thresholds []float64, err error) {
	n, err := checkPair("ROCCurve", yTrue, scores)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := checkBinary("ROCCurve", yTrue); err != nil {
		return nil, nil, nil, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	nNeg := n - nPos

	fpr = []float64{0}
	tpr = []float64{0}
	thresholds = []float64{math.Inf(1)}

	order := rankOrder(scores, true)
	tp, fp := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(order[i]) == 1 {
			tp++
		} else {
			fp++
		}
		score := scores.AtVec(order[i])
		if i+1 < n && scores.AtVec(order[i+1]) == score {
			continue
		}
		fpr = append(fpr, errors.SafeDivide(float64(fp), float64(nNeg)))
		tpr = append(tpr, errors.SafeDivide(float64(tp), float64(nPos)))
		thresholds = append(thresholds, score)
	}
	return fpr, tpr, thresholds, nil
}

// AveragePrecision ranks samples by descending score and averages the
// precision at the rank of every positive. It is 0 when there are no
// positives.
func AveragePrecision(yTrue, scores *mat.VecDense) (float64, error) {
	_, err := checkPair("AveragePrecision", yTrue, scores)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AveragePrecision", yTrue); err != nil {
		return 0, err
	}

	order := rankOrder(scores, true)
	var sum float64
	hits := 0
	for rank, idx := range order {
		if yTrue.AtVec(idx) == 1 {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}
	if hits == 0 {
		return 0, nil
	}
	return sum / float64(hits), nil
}

// rankOrder returns sample indices sorted by score, stable on ties.
func rankOrder(scores *mat.VecDense, descending bool) []int {
	order := make([]int, scores.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if descending {
			return scores.AtVec(order[a]) > scores.AtVec(order[b])
		}
		return scores.AtVec(order[a]) < scores.AtVec(order[b])
	})
	return order
}
