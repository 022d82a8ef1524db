package gormstore

import (
	"context"

	g "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = g.Describe("Open", func() {
	g.DescribeTable("mysql dsn gets parseTime",
		func(in, want string) {
			Expect(withParseTime(in)).To(Equal(want))
		},
		g.Entry("bare dsn", "u:p@tcp(db:3306)/app", "u:p@tcp(db:3306)/app?parseTime=true"),
		g.Entry("dsn with params", "u:p@tcp(db:3306)/app?charset=utf8mb4", "u:p@tcp(db:3306)/app?charset=utf8mb4&parseTime=true"),
		g.Entry("explicit setting kept", "u:p@tcp(db:3306)/app?parseTime=false", "u:p@tcp(db:3306)/app?parseTime=false"),
	)

	g.It("should refuse an unknown driver", func() {
		_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})

		Expect(err).To(MatchError(ContainSubstring("unsupported session store driver")))
	})
})
