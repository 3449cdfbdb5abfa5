package integrations_test

import (
	"fmt"

	"github.com/matzehuels/re3facet/pkg/integrations"
)

func ExampleResolveURL() {
	base := "https://www.re3data.org/api/beta/repositories"
	fmt.Println(integrations.ResolveURL(base, "/api/beta/repository/r3d100010468"))
	fmt.Println(integrations.ResolveURL(base, "https://example.org/r3d1"))
	// Output:
	// https://www.re3data.org/api/beta/repository/r3d100010468
	// https://example.org/r3d1
}
