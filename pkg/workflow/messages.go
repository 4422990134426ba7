package workflow

import "strings"

// FallbackKind enumerates every degraded-path situation a handler can hit.
// All user-visible fallback text lives in one table so the wording is
// uniform and testable in one place.
type FallbackKind int

const (
	// FallbackNoCollections: the vector store holds no collections at all.
	FallbackNoCollections FallbackKind = iota
	// FallbackNoDocuments: the query matched nothing in the collection.
	FallbackNoDocuments
	// FallbackCollectionAccess: the collection exists but could not be read.
	FallbackCollectionAccess
	// FallbackStoreConnection: the vector store itself is unreachable.
	FallbackStoreConnection
	// FallbackRetrievalError: unexpected failure anywhere in the retrieval path.
	FallbackRetrievalError
	// FallbackWebSearchError: unexpected failure anywhere in the web search path.
	FallbackWebSearchError
)

var fallbackMessages = map[FallbackKind]string{
	FallbackNoCollections:    "문서 컬렉션이 없습니다. 먼저 문서를 업로드해주세요.",
	FallbackNoDocuments:      "관련된 문서를 찾을 수 없습니다. 다른 키워드로 검색해보세요.",
	FallbackCollectionAccess: "컬렉션에 접근할 수 없습니다. 벡터 저장소 설정을 확인해주세요.",
	FallbackStoreConnection:  "벡터 저장소 연결에 실패했습니다. 데이터베이스가 실행 중인지 확인해주세요.",
	FallbackRetrievalError:   "문서 검색 중 오류가 발생했습니다. 다시 시도해주세요.",
	FallbackWebSearchError:   "웹 검색 중 오류가 발생했습니다. 다시 시도해주세요.",
}

// FallbackMessage returns the Korean user-facing text for a degraded path.
func FallbackMessage(kind FallbackKind) string {
	return fallbackMessages[kind]
}

// IsInformativeContext reports whether retrieved context is real document
// text rather than one of the degraded notices. The notices all carry one
// of two markers, so the check is a substring test, not a table lookup;
// prompts built from degraded context use the acknowledge-the-failure
// template instead of the grounded one.
func IsInformativeContext(context string) bool {
	if context == "" {
		return false
	}
	return !strings.Contains(context, "실패") && !strings.Contains(context, "없습니다")
}
