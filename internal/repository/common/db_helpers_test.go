package common

import "testing"

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		name     string
		in       Page
		wantNum  int
		wantSize int
	}{
		{"нулевые значения", Page{}, 1, DefaultPageSize},
		{"отрицательная страница", Page{Number: -3, Size: 20}, 1, 20},
		{"размер выше лимита", Page{Number: 2, Size: 500}, 2, MaxPageSize},
		{"валидные значения", Page{Number: 4, Size: 25}, 4, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Number != tc.wantNum {
				t.Errorf("ожидался номер страницы %d, получен %d", tc.wantNum, got.Number)
			}
			if got.Size != tc.wantSize {
				t.Errorf("ожидался размер страницы %d, получен %d", tc.wantSize, got.Size)
			}
		})
	}
}

func TestPageLimitOffset(t *testing.T) {
	p := Page{Number: 3, Size: 10}.Normalize()

	if got := p.Limit(); got != 11 {
		t.Errorf("ожидался лимит 11, получен %d", got)
	}
	if got := p.Offset(); got != 20 {
		t.Errorf("ожидалось смещение 20, получено %d", got)
	}
}

func TestTrim(t *testing.T) {
	p := Page{Number: 1, Size: 10}.Normalize()

	// 11 строк при размере страницы 10 — есть следующая страница
	rows := make([]int, 11)
	for i := range rows {
		rows[i] = i
	}

	trimmed, hasMore := Trim(rows, p)
	if len(trimmed) != 10 {
		t.Fatalf("ожидалось 10 строк, получено %d", len(trimmed))
	}
	if !hasMore {
		t.Error("ожидался признак следующей страницы")
	}

	// Ровно размер страницы — следующей страницы нет
	trimmed, hasMore = Trim(rows[:10], p)
	if len(trimmed) != 10 {
		t.Fatalf("ожидалось 10 строк, получено %d", len(trimmed))
	}
	if hasMore {
		t.Error("признак следующей страницы не ожидался")
	}

	// Пустая выборка
	trimmed, hasMore = Trim([]int{}, p)
	if len(trimmed) != 0 || hasMore {
		t.Error("для пустой выборки ожидались пустой срез и отсутствие следующей страницы")
	}
}
