package widgetspecs

import (
	"fmt"
	"sort"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/speccheck/factory"
	"github.com/launchdarkly/speccheck/framework/spec"
	"github.com/launchdarkly/speccheck/sampleapp"
)

const skipBefore = "skip_before"

type modelFactories struct {
	myModels *factory.Factory[sampleapp.MyModel]
	models2  *factory.Factory[sampleapp.MyModel2]
	bars     *factory.Factory[sampleapp.Bar]
	bazzes   *factory.Factory[sampleapp.Baz]
}

func newModelFactories() modelFactories {
	return modelFactories{
		myModels: factory.New(func(n int) sampleapp.MyModel { return sampleapp.MyModel{Foo: fmt.Sprintf("foo %d", n)} }),
		models2:  factory.New(func(n int) sampleapp.MyModel2 { return sampleapp.MyModel2{Name: fmt.Sprintf("model2 %d", n)} }),
		bars:     factory.New(func(int) sampleapp.Bar { return sampleapp.Bar{} }),
		bazzes:   factory.New(func(int) sampleapp.Baz { return sampleapp.Baz{} }),
	}
}

func store(e *spec.E) *sampleapp.Store {
	return spec.Get[*sampleapp.Store](e, "store")
}

func myModel(e *spec.E) sampleapp.MyModel {
	return spec.Get[sampleapp.MyModel](e, "my_model")
}

func barIDs(bars []sampleapp.Bar) []int {
	ids := make([]int, 0, len(bars))
	for _, b := range bars {
		ids = append(ids, b.ID)
	}
	sort.Ints(ids)
	return ids
}

// DoModelTests declares the specs for the application's models. Every example gets an empty
// store of its own.
func DoModelTests(d *spec.DSL) {
	f := newModelFactories()

	d.Let("store", func(e *spec.E) interface{} { return sampleapp.NewStore() })
	d.Subject(func(e *spec.E) interface{} { return f.myModels.AttributesFor() })

	d.Describe("this describe block won't hijack the subject", func(d *spec.DSL) {
		d.It("", func(e *spec.E) { assert.IsType(e, sampleapp.MyModel{}, e.Subject()) })
	})

	d.Describe("MyModel2", func(d *spec.DSL) {
		d.Subject(func(e *spec.E) interface{} {
			return create(e, f.models2.WithPersist(store(e).CreateMyModel2))
		})

		d.It("replaces the outer subject", func(e *spec.E) {
			subject, ok := e.Subject().(sampleapp.MyModel2)
			require.True(e, ok, "subject was %T", e.Subject())
			assert.NotZero(e, subject.ID)
		})
	})

	d.It("validates presence of foo", func(e *spec.E) {
		subject := e.Subject().(sampleapp.MyModel)
		subject.Foo = ""
		_, err := store(e).CreateMyModel(subject)
		var invalid *sampleapp.ValidationError
		require.ErrorAs(e, err, &invalid)
		assert.Contains(e, invalid.Messages, "foo can't be blank")
	})

	d.It("has many bars", func(e *spec.E) {
		saved, err := store(e).CreateMyModel(e.Subject().(sampleapp.MyModel))
		require.NoError(e, err)
		bars := createList(e, f.bars.WithPersist(store(e).CreateBar), 2, func(b *sampleapp.Bar) { b.MyModelID = saved.ID })
		assert.Equal(e, bars, store(e).BarsOf(saved.ID))
	})

	d.It("belongs to baz", func(e *spec.E) {
		baz := create(e, f.bazzes.WithPersist(store(e).CreateBaz))
		subject := e.Subject().(sampleapp.MyModel)
		subject.BazID = baz.ID
		saved, err := store(e).CreateMyModel(subject)
		require.NoError(e, err)
		found, err := store(e).BazOf(saved.ID)
		require.NoError(e, err)
		assert.Equal(e, baz, found)
	})

	d.Describe(".bazzes_count", func(d *spec.DSL) {
		d.Let("total", func(e *spec.E) interface{} { return 5 })
		d.LetBang("bazzes", func(e *spec.E) interface{} {
			return createList(e, f.bazzes.WithPersist(store(e).CreateBaz), spec.Get[int](e, "total"))
		})

		d.It("", func(e *spec.E) { assert.Equal(e, spec.Get[int](e, "total"), store(e).BazzesCount()) })
	})

	d.Describe("#boom_half_bars!", func(d *spec.DSL) {
		d.Let("associated_total", func(e *spec.E) interface{} { return 4 })
		d.Let("my_model", func(e *spec.E) interface{} {
			return create(e, f.myModels.WithPersist(store(e).CreateMyModel))
		})
		d.LetBang("bars", func(e *spec.E) interface{} {
			return createList(e, f.bars.WithPersist(store(e).CreateBar), spec.Get[int](e, "associated_total"),
				func(b *sampleapp.Bar) { b.MyModelID = myModel(e).ID })
		})
		d.LetBang("other_bar", func(e *spec.E) interface{} {
			return create(e, f.bars.WithPersist(store(e).CreateBar))
		})
		d.Before(func(e *spec.E) {
			if e.HasTag(skipBefore) {
				return
			}
			_, err := store(e).BoomHalfBars(myModel(e).ID)
			require.NoError(e, err)
		})

		d.It("destroys half the bar associations", func(e *spec.E) {
			destroyed, err := store(e).BoomHalfBars(myModel(e).ID)
			require.NoError(e, err)
			remaining := make(map[int]bool)
			for _, b := range store(e).BarsOf(myModel(e).ID) {
				remaining[b.ID] = true
			}
			var gone []sampleapp.Bar
			for _, b := range spec.Get[[]sampleapp.Bar](e, "bars") {
				if !remaining[b.ID] {
					gone = append(gone, b)
				}
			}
			assert.Equal(e, barIDs(gone), barIDs(destroyed))
		}, spec.Tags(skipBefore))

		d.It("goes down to the right number of bar associations", func(e *spec.E) {
			assert.Len(e, store(e).BarsOf(myModel(e).ID), spec.Get[int](e, "associated_total")/2)
		})

		d.It("destroys only bars associated with my_model", func(e *spec.E) {
			assert.Equal(e, spec.Get[int](e, "associated_total")/2+1, store(e).BarCount())
		})
	})
}
