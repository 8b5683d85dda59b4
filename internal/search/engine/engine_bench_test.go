package engine

import (
	"fmt"
	"testing"

	"github.com/auroralabs/aurora-search/internal/search/store"
)

var benchVocabulary = []string{
	"pizza", "pasta", "movie", "dinner", "meeting", "tonight", "weekend",
	"paris", "adventure", "comedy", "robot", "mystery", "travel", "hiking",
}

func benchCorpus(n int) []store.Message {
	messages := make([]store.Message, n)
	for i := range messages {
		a := benchVocabulary[i%len(benchVocabulary)]
		b := benchVocabulary[(i*7+3)%len(benchVocabulary)]
		c := benchVocabulary[(i*13+5)%len(benchVocabulary)]
		messages[i] = store.Message{
			ID:       fmt.Sprintf("%d", i),
			UserName: "bench",
			Text:     fmt.Sprintf("%s and %s with %s", a, b, c),
		}
	}
	return messages
}

func BenchmarkSearch(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			eng := New(Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
			if err := eng.Load(benchCorpus(size), nil); err != nil {
				b.Fatalf("Load: %v", err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Search("pizza movie weekend", FilterMessages, 0, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	eng := New(Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
	if err := eng.Load(benchCorpus(10000), nil); err != nil {
		b.Fatalf("Load: %v", err)
	}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := eng.Search("pizza movie", FilterMessages, 0, 10); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkLoad(b *testing.B) {
	for _, size := range []int{1000, 10000} {
		corpus := benchCorpus(size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			eng := New(Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := eng.Load(corpus, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
