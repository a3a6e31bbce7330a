package entity

// ConfusionMatrix матрица ошибок модели: строки по истинному классу, столбцы по предсказанному.
type ConfusionMatrix struct {
	Labels []string
	Counts [][]int
}

// DefaultConfusionMatrix статическая матрица для страницы метрик.
func DefaultConfusionMatrix() ConfusionMatrix {
	return ConfusionMatrix{
		Labels: Labels(),
		Counts: [][]int{
			{120, 5, 2},
			{3, 95, 0},
			{1, 0, 88},
		},
	}
}

// ClassScore точность и полнота одного класса.
type ClassScore struct {
	Label     string
	Precision float64
	Recall    float64
}

// Scores считает точность и полноту по каждому классу.
func (m ConfusionMatrix) Scores() []ClassScore {
	scores := make([]ClassScore, 0, len(m.Labels))
	for i, label := range m.Labels {
		var rowSum, colSum int
		for j := range m.Labels {
			rowSum += m.Counts[i][j]
			colSum += m.Counts[j][i]
		}

		score := ClassScore{Label: label}
		if colSum > 0 {
			score.Precision = float64(m.Counts[i][i]) / float64(colSum)
		}
		if rowSum > 0 {
			score.Recall = float64(m.Counts[i][i]) / float64(rowSum)
		}
		scores = append(scores, score)
	}
	return scores
}
