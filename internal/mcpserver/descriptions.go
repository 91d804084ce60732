package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyze() string {
	return `Analyzes one Java compilation unit for method-level and file-level code quality issues.

USE WHEN:
- Reviewing a Java file before a commit or pull request
- Looking for quick, mechanical fixes (unused imports, magic numbers, empty catch blocks)
- Finding methods that are too long, too deeply nested or too complex

INTERPRETING RESULTS:
- kind "error": a threshold violation or a likely defect; kind "suggestion": advisory
- long_method: more than 10 lines by default; consider extracting blocks
- deep_nesting: blocks nested deeper than 2 levels inside a method body
- high_complexity: cyclomatic complexity above 5 (if/for/while/do/case/catch/?:/&&/||)
- complexity_info: the measured complexity of every method, for context only
- poor_name, empty_catch, empty_body, unused_import, magic_number: as named
- parse_error: the text is not valid Java; no other issues are reported
- fixes: titles of quick fixes that apply_quick_fix can run on that issue

METRICS RETURNED:
- document: id to pass to apply_quick_fix, undo_quick_fix and redo_quick_fix
- errors, suggestions, fixable: counts
- issues: line, category, kind, severity, message, symbol and fixes per issue`
}

func describeApply() string {
	return `Applies one quick fix to a document previously analyzed with analyze_java.

USE WHEN:
- An issue from analyze_java lists a fix and the change is wanted
- Cleaning up unused imports or extracting magic numbers to constants

INTERPRETING RESULTS:
- The document is re-analyzed first, so line numbers refer to its current text
- Fixes that only advise (Split Method, Improve Variable Name) insert a comment
- An error means no issue with a fix matched the line, or the fix no longer applies

METRICS RETURNED:
- description: what the fix changed
- source: the complete new text of the document
- can_undo, can_redo: history state; written: whether the file was updated`
}

func describeUndo() string {
	return `Reverts the most recent quick fix applied to a document.

USE WHEN:
- A fix produced an unwanted change

INTERPRETING RESULTS:
- Each call steps one fix back; an error means there is nothing to undo
- Analyzing different text for the same document clears its history

METRICS RETURNED:
- description: the change that was reverted
- source: the restored text
- can_undo, can_redo: history state`
}

func describeRedo() string {
	return `Re-applies the most recently undone quick fix on a document.

USE WHEN:
- An undo went one step too far

INTERPRETING RESULTS:
- Applying a new fix clears the redo history; an error means there is nothing to redo

METRICS RETURNED:
- description: the change that was re-applied
- source: the resulting text
- can_undo, can_redo: history state`
}
