package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"routemend/internal/collab"
)

var (
	exceptionsImport = collab.ImportLine("@/lib/utils/error-handler", collab.KindNames())
	responsesImport  = collab.ImportLine("@/lib/utils/response-handler", collab.Builders)
)

func defaultImports() ImportRewriter {
	return ImportRewriter{
		Legacy:        "NextResponse",
		RequestModule: "next/server",
		RequestType:   "NextRequest",
		Exceptions:    "@/lib/utils/error-handler",
		Responses:     "@/lib/utils/response-handler",
	}
}

func lines(l ...string) string { return strings.Join(l, "\n") }

func TestImportRewriter(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "narrows combined import",
			in: lines(
				`import { NextRequest, NextResponse } from "next/server";`,
				`import { db } from "@/lib/db";`,
				"",
				"export const x = 1;",
			),
			want: lines(
				`import { NextRequest } from "next/server";`,
				`import { db } from "@/lib/db";`,
				exceptionsImport,
				responsesImport,
				"",
				"export const x = 1;",
			),
		},
		{
			name: "removes legacy-only import",
			in: lines(
				`import { NextResponse } from "next/server";`,
				`import { db } from "@/lib/db";`,
				"const x = 1;",
			),
			want: lines(
				`import { db } from "@/lib/db";`,
				exceptionsImport,
				responsesImport,
				"",
				"const x = 1;",
			),
		},
		{
			name: "multi-line import and type import",
			in: lines(
				"import {",
				"  NextRequest,",
				"  NextResponse,",
				`} from "next/server";`,
				`import type { User } from "@/types";`,
				"const x = 1;",
			),
			want: lines(
				`import { NextRequest } from "next/server";`,
				`import type { User } from "@/types";`,
				exceptionsImport,
				responsesImport,
				"",
				"const x = 1;",
			),
		},
		{
			name: "single quotes without semicolon",
			in: lines(
				`import { NextResponse, NextRequest } from 'next/server'`,
				"",
				"export {}",
			),
			want: lines(
				`import { NextRequest } from 'next/server'`,
				exceptionsImport,
				responsesImport,
				"",
				"export {}",
			),
		},
		{
			name: "no imports left",
			in: lines(
				`import { NextResponse } from "next/server";`,
				"",
				"export const x = 1;",
			),
			want: lines(
				exceptionsImport,
				responsesImport,
				"",
				"export const x = 1;",
			),
		},
		{
			name: "no imports at all",
			in:   "export const x = 1;\n",
			want: lines(exceptionsImport, responsesImport, "", "export const x = 1;\n"),
		},
		{
			name: "import is the last line",
			in:   `import { NextRequest, NextResponse } from "next/server";`,
			want: lines(`import { NextRequest } from "next/server";`, exceptionsImport, responsesImport, ""),
		},
		{
			name: "partial responses import gains the missing builders",
			in: lines(
				`import { NextResponse } from "next/server";`,
				`import { successResponse } from "@/lib/utils/response-handler";`,
				"",
			),
			want: lines(
				`import { successResponse, errorResponse, createdResponse, noContentResponse } from "@/lib/utils/response-handler";`,
				exceptionsImport,
				"",
			),
		},
		{
			name: "complete responses import is kept as is",
			in: lines(
				`import { NextResponse } from "next/server";`,
				`import { noContentResponse, createdResponse, errorResponse, successResponse } from '@/lib/utils/response-handler'`,
				"",
			),
			want: lines(
				`import { noContentResponse, createdResponse, errorResponse, successResponse } from '@/lib/utils/response-handler'`,
				exceptionsImport,
				"",
			),
		},
		{
			name: "aliased builder still needs its own name",
			in: lines(
				`import { NextResponse } from "next/server";`,
				`import { successResponse as ok, errorResponse, createdResponse, noContentResponse } from "@/lib/utils/response-handler";`,
				"",
			),
			want: lines(
				`import { successResponse as ok, errorResponse, createdResponse, noContentResponse, successResponse } from "@/lib/utils/response-handler";`,
				exceptionsImport,
				"",
			),
		},
		{
			name: "responses module named only in a comment",
			in: lines(
				`import { NextResponse } from "next/server";`,
				`// TODO migrate to "@/lib/utils/response-handler"`,
				"export const x = 1;",
			),
			want: lines(
				exceptionsImport,
				responsesImport,
				"",
				`// TODO migrate to "@/lib/utils/response-handler"`,
				"export const x = 1;",
			),
		},
		{
			name: "import-like text in a string is ignored",
			in: lines(
				`import { NextResponse } from "next/server";`,
				"const doc = `",
				`import { x } from "y";`,
				"`;",
			),
			want: lines(
				exceptionsImport,
				responsesImport,
				"",
				"const doc = `",
				`import { x } from "y";`,
				"`;",
			),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, defaultImports().Rewrite(tc.in))
		})
	}
}

func TestImportRewriterNoopWithMarker(t *testing.T) {
	in := lines(
		`import { NextRequest, NextResponse } from "next/server";`,
		`import { NotFoundError } from "@/lib/utils/error-handler";`,
		"",
	)
	assert.Equal(t, in, defaultImports().Rewrite(in))
}

func TestImportRewriterCRLF(t *testing.T) {
	in := "import { NextResponse } from \"next/server\";\r\nimport { db } from \"@/lib/db\";\r\n\r\nexport const a = 1;\r\n"
	out := defaultImports().Rewrite(in)

	assert.Equal(t,
		"import { db } from \"@/lib/db\";\r\n"+exceptionsImport+"\r\n"+responsesImport+"\r\n\r\nexport const a = 1;\r\n",
		out)
	assert.NotRegexp(t, "[^\r]\n", out)
}

func TestImportRewriterLeavesOtherImports(t *testing.T) {
	in := lines(
		`import { cookies } from "next/headers";`,
		`import { NextResponse } from "next/server";`,
		`import { z } from "zod";`,
		"",
	)
	out := defaultImports().Rewrite(in)
	assert.Equal(t, lines(
		`import { cookies } from "next/headers";`,
		`import { z } from "zod";`,
		exceptionsImport,
		responsesImport,
		"",
	), out)
}
