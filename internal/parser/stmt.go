package parser

import (
	"strings"

	"mbasic/internal/ast"
	"mbasic/internal/lexer"
	"mbasic/internal/values"
)

// parseStatement parses one statement starting at the current token. The
// caller (parseLine or parseStmtListUntil) handles the colon that may
// follow; IF is the one exception, since its own THEN/ELSE clauses consume
// statement lists up to end-of-line themselves.
func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenPrint, lexer.TokenQuest:
		p.advance()
		return p.parsePrint(false)
	case lexer.TokenLPrint:
		p.advance()
		return p.parsePrint(true)
	case lexer.TokenWrite:
		p.advance()
		return p.parseWriteStmt()
	case lexer.TokenInput:
		p.advance()
		return p.parseInputStmt(false)
	case lexer.TokenLine:
		p.advance()
		p.consume(lexer.TokenInput, "expected INPUT after LINE")
		return p.parseInputStmt(true)
	case lexer.TokenLet:
		p.advance()
		return p.parseLetStmt()
	case lexer.TokenIf:
		p.advance()
		return p.parseIfStmt()
	case lexer.TokenFor:
		p.advance()
		return p.parseForStmt()
	case lexer.TokenNext:
		p.advance()
		return p.parseNextStmt()
	case lexer.TokenWhile:
		p.advance()
		return &ast.WhileStmt{Cond: p.parseExpr()}
	case lexer.TokenWend:
		p.advance()
		return &ast.WendStmt{}
	case lexer.TokenGoto:
		p.advance()
		return &ast.GotoStmt{Line: p.parseLineNumberOperand()}
	case lexer.TokenGosub:
		p.advance()
		return &ast.GosubStmt{Line: p.parseLineNumberOperand()}
	case lexer.TokenReturn:
		p.advance()
		line := 0
		if p.check(lexer.TokenNumber) {
			line = p.parseLineNumberOperand()
		}
		return &ast.ReturnStmt{Line: line}
	case lexer.TokenOn:
		p.advance()
		return p.parseOnStmt()
	case lexer.TokenError:
		p.advance()
		return &ast.ErrorStmt{Code: p.parseExpr()}
	case lexer.TokenResume:
		p.advance()
		return p.parseResumeStmt()
	case lexer.TokenData:
		p.advance()
		return p.parseDataStmt()
	case lexer.TokenRead:
		p.advance()
		return p.parseReadStmt()
	case lexer.TokenRestore:
		p.advance()
		line := 0
		if p.check(lexer.TokenNumber) {
			line = p.parseLineNumberOperand()
		}
		return &ast.RestoreStmt{Line: line}
	case lexer.TokenDim:
		p.advance()
		return p.parseDimStmt()
	case lexer.TokenDef:
		p.advance()
		return p.parseDefFnStmt()
	case lexer.TokenDefInt, lexer.TokenDefSng, lexer.TokenDefDbl, lexer.TokenDefStr:
		return p.parseDefTypeStmt()
	case lexer.TokenEnd, lexer.TokenSystem:
		p.advance()
		return &ast.EndStmt{}
	case lexer.TokenStop:
		p.advance()
		return &ast.StopStmt{}
	case lexer.TokenCls:
		p.advance()
		return &ast.ClsStmt{}
	case lexer.TokenRem, lexer.TokenApos:
		t := p.advance()
		return &ast.CommentStmt{Text: t.Lexeme}
	case lexer.TokenSwap:
		p.advance()
		return p.parseSwapStmt()
	case lexer.TokenErase:
		p.advance()
		return p.parseEraseStmt()
	case lexer.TokenClear:
		p.advance()
		return &ast.ClearStmt{}
	case lexer.TokenOption:
		p.advance()
		return p.parseOptionBaseStmt()
	case lexer.TokenRandom:
		p.advance()
		return p.parseRandomizeStmt()
	case lexer.TokenTron:
		p.advance()
		return &ast.TronStmt{}
	case lexer.TokenTroff:
		p.advance()
		return &ast.TroffStmt{}
	case lexer.TokenWidth:
		p.advance()
		return &ast.WidthStmt{Width: p.parseExpr()}
	case lexer.TokenPoke:
		p.advance()
		a := p.parseExpr()
		p.consume(lexer.TokenComma, "expected , in POKE")
		return &ast.PokeStmt{Addr: a, Value: p.parseExpr()}
	case lexer.TokenOpen:
		p.advance()
		return p.parseOpenStmt()
	case lexer.TokenClose, lexer.TokenReset:
		p.advance()
		return p.parseCloseStmt()
	case lexer.TokenField:
		p.advance()
		return p.parseFieldStmt()
	case lexer.TokenGet:
		p.advance()
		return p.parseGetPutStmt(false)
	case lexer.TokenPut:
		p.advance()
		return p.parseGetPutStmt(true)
	case lexer.TokenLset:
		p.advance()
		return p.parseLsetRsetStmt(false)
	case lexer.TokenRset:
		p.advance()
		return p.parseLsetRsetStmt(true)
	case lexer.TokenChain:
		p.advance()
		return p.parseChainStmt()
	case lexer.TokenMerge:
		p.advance()
		return &ast.MergeStmt{Path: p.parseExpr()}
	case lexer.TokenCommon:
		p.advance()
		return p.parseCommonStmt()
	case lexer.TokenCall:
		p.advance()
		return p.parseCallStmt()
	case lexer.TokenOut:
		p.advance()
		port := p.parseExpr()
		p.consume(lexer.TokenComma, "expected , in OUT")
		return &ast.OutStmt{Port: port, Value: p.parseExpr()}
	case lexer.TokenWait:
		p.advance()
		a := p.parseExpr()
		p.consume(lexer.TokenComma, "expected , in WAIT")
		return &ast.WaitStmt{Addr: a, Mask: p.parseExpr()}
	case lexer.TokenKill:
		p.advance()
		return &ast.KillStmt{Path: p.parseExpr()}
	case lexer.TokenName:
		p.advance()
		return p.parseNameStmt()
	case lexer.TokenRun:
		p.advance()
		return p.parseRunStmt()
	case lexer.TokenIdent:
		return p.parseIdentStatement()
	default:
		p.errf("unexpected token %s %q", tok.Type, tok.Lexeme)
	}
	panic("unreachable")
}

// parseStmtListUntil gathers colon-separated statements up to end-of-line
// or one of stop, without consuming the stop token (used by one-line IF
// for its THEN/ELSE clauses).
func (p *Parser) parseStmtListUntil(stop ...lexer.TokenType) []ast.Stmt {
	var list []ast.Stmt
	for {
		if p.isAtEnd() || p.check(lexer.TokenNewline) {
			break
		}
		stopped := false
		for _, t := range stop {
			if p.check(t) {
				stopped = true
				break
			}
		}
		if stopped {
			break
		}
		list = append(list, p.parseStatement())
		if p.match(lexer.TokenColon) {
			continue
		}
		break
	}
	return list
}

// parseIdentStatement disambiguates MID$ assignment (a pseudo-statement
// form, §4.7) from an implicit LET — the only two ways a bare identifier
// can start a statement.
func (p *Parser) parseIdentStatement() ast.Stmt {
	tok := p.peek()
	if strings.EqualFold(tok.Lexeme, "mid$") {
		p.advance()
		p.consume(lexer.TokenLParen, "expected ( after MID$")
		target := p.parseLValue()
		p.consume(lexer.TokenComma, "expected , in MID$ assignment")
		start := p.parseExpr()
		var length ast.Expr
		if p.match(lexer.TokenComma) {
			length = p.parseExpr()
		}
		p.consume(lexer.TokenRParen, "expected )")
		p.consume(lexer.TokenEq, "expected = in MID$ assignment")
		return &ast.MidAssignStmt{Target: target, Start: start, Length: length, Value: p.parseExpr()}
	}
	return p.parseLetStmt()
}

func (p *Parser) parseLetStmt() ast.Stmt {
	target := p.parseLValue()
	p.consume(lexer.TokenEq, "expected =")
	return &ast.LetStmt{Target: target, Value: p.parseExpr()}
}

// --- PRINT / WRITE / INPUT -------------------------------------------------------

func (p *Parser) parsePrint(lprint bool) ast.Stmt {
	st := &ast.PrintStmt{LPrint: lprint}
	if p.match(lexer.TokenHash) {
		st.File = p.parseExpr()
		p.match(lexer.TokenComma)
	}
	if p.match(lexer.TokenUsing) {
		st.Using = p.parseExpr()
		p.consume(lexer.TokenSemi, "expected ; after USING format")
	}
	st.Items = p.parsePrintItems()
	return st
}

func (p *Parser) parsePrintItems() []ast.PrintItem {
	var items []ast.PrintItem
	for {
		if p.atStmtEnd() {
			break
		}
		if p.check(lexer.TokenSemi) || p.check(lexer.TokenComma) {
			items = append(items, ast.PrintItem{Sep: p.sepFor(p.advance().Type)})
			continue
		}
		e := p.parseExpr()
		switch {
		case p.check(lexer.TokenSemi) || p.check(lexer.TokenComma):
			items = append(items, ast.PrintItem{Expr: e, Sep: p.sepFor(p.advance().Type)})
		case p.atStmtEnd():
			items = append(items, ast.PrintItem{Expr: e, Sep: ast.SepEnd})
		default:
			// two expressions with no separator token between them
			// (e.g. `PRINT A$ B$`): implicit single space, keep parsing.
			items = append(items, ast.PrintItem{Expr: e, Sep: ast.SepNone})
		}
	}
	return items
}

func (p *Parser) sepFor(t lexer.TokenType) ast.PrintSep {
	if t == lexer.TokenSemi {
		return ast.SepSemi
	}
	return ast.SepComma
}

func (p *Parser) parseWriteStmt() ast.Stmt {
	st := &ast.WriteStmt{}
	if p.match(lexer.TokenHash) {
		st.File = p.parseExpr()
		p.match(lexer.TokenComma)
	}
	if !p.atStmtEnd() {
		st.Items = p.parseExprList()
	}
	return st
}

func (p *Parser) parseInputStmt(lineInput bool) ast.Stmt {
	st := &ast.InputStmt{LineInput: lineInput}
	if p.match(lexer.TokenHash) {
		st.File = p.parseExpr()
		p.consume(lexer.TokenComma, "expected , after file number")
	} else if p.check(lexer.TokenString) {
		strTok := p.advance()
		st.PromptExpr = &ast.StringLit{Value: strTok.Lexeme}
		if p.match(lexer.TokenComma) {
			st.NoQMark = true
		} else {
			p.consume(lexer.TokenSemi, "expected ; or , after INPUT prompt")
		}
	}
	for {
		st.Vars = append(st.Vars, p.parseLValue())
		if p.match(lexer.TokenComma) {
			continue
		}
		break
	}
	return st
}

// --- control flow -------------------------------------------------------

func (p *Parser) parseIfStmt() ast.Stmt {
	st := &ast.IfStmt{Cond: p.parseExpr()}
	p.consume(lexer.TokenThen, "expected THEN")
	if p.check(lexer.TokenNumber) {
		st.ThenGoto = p.parseLineNumberOperand()
	} else {
		st.ThenStmts = p.parseStmtListUntil(lexer.TokenElse)
	}
	if p.match(lexer.TokenElse) {
		if p.check(lexer.TokenNumber) {
			st.ElseGoto = p.parseLineNumberOperand()
		} else {
			st.ElseStmts = p.parseStmtListUntil()
		}
	}
	return st
}

func (p *Parser) parseForStmt() ast.Stmt {
	name := p.consume(lexer.TokenIdent, "expected loop variable").Lexeme
	p.consume(lexer.TokenEq, "expected =")
	from := p.parseExpr()
	p.consume(lexer.TokenTo, "expected TO")
	to := p.parseExpr()
	var step ast.Expr
	if p.match(lexer.TokenStep) {
		step = p.parseExpr()
	}
	return &ast.ForStmt{Var: name, From: from, To: to, Step: step}
}

func (p *Parser) parseNextStmt() ast.Stmt {
	st := &ast.NextStmt{}
	if p.check(lexer.TokenIdent) {
		st.Vars = append(st.Vars, p.advance().Lexeme)
		for p.match(lexer.TokenComma) {
			st.Vars = append(st.Vars, p.consume(lexer.TokenIdent, "expected variable").Lexeme)
		}
	}
	return st
}

func (p *Parser) parseOnStmt() ast.Stmt {
	if p.match(lexer.TokenError) {
		p.consume(lexer.TokenGoto, "expected GOTO after ON ERROR")
		return &ast.OnErrorStmt{Line: p.parseLineNumberOperand()}
	}
	e := p.parseExpr()
	isGosub := false
	if p.match(lexer.TokenGosub) {
		isGosub = true
	} else {
		p.consume(lexer.TokenGoto, "expected GOTO or GOSUB")
	}
	targets := []int{p.parseLineNumberOperand()}
	for p.match(lexer.TokenComma) {
		targets = append(targets, p.parseLineNumberOperand())
	}
	return &ast.OnGotoStmt{Expr: e, Targets: targets, IsGosub: isGosub}
}

func (p *Parser) parseResumeStmt() ast.Stmt {
	if p.match(lexer.TokenNext) {
		return &ast.ResumeStmt{Next: true}
	}
	if p.check(lexer.TokenNumber) {
		return &ast.ResumeStmt{Line: p.parseLineNumberOperand()}
	}
	return &ast.ResumeStmt{}
}

// --- data -------------------------------------------------------

func (p *Parser) parseDataStmt() ast.Stmt {
	st := &ast.DataStmt{}
	for {
		if p.atStmtEnd() {
			break
		}
		st.Items = append(st.Items, p.parseDataItem())
		if p.match(lexer.TokenComma) {
			continue
		}
		break
	}
	return st
}

// parseDataItem approximates classic MBASIC's raw-text DATA capture on top
// of an already-tokenized stream: a quoted item keeps its literal text and
// is always String; an unquoted item is the space-joined text of whatever
// tokens precede the next comma/colon/newline (so e.g. `DATA 3 DOGS` reads
// back as "3 DOGS", not just "3").
func (p *Parser) parseDataItem() ast.DataItem {
	if p.check(lexer.TokenString) {
		tok := p.advance()
		return ast.DataItem{Text: tok.Lexeme, Quoted: true}
	}
	var sb strings.Builder
	first := true
	for !(p.check(lexer.TokenComma) || p.check(lexer.TokenColon) || p.check(lexer.TokenNewline) || p.isAtEnd()) {
		tok := p.advance()
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Lexeme)
		first = false
	}
	return ast.DataItem{Text: sb.String()}
}

func (p *Parser) parseReadStmt() ast.Stmt {
	st := &ast.ReadStmt{Targets: []ast.LValue{p.parseLValue()}}
	for p.match(lexer.TokenComma) {
		st.Targets = append(st.Targets, p.parseLValue())
	}
	return st
}

// --- declarations -------------------------------------------------------

func (p *Parser) parseDimStmt() ast.Stmt {
	st := &ast.DimStmt{Decls: []ast.ArrayDecl{p.parseArrayDecl()}}
	for p.match(lexer.TokenComma) {
		st.Decls = append(st.Decls, p.parseArrayDecl())
	}
	return st
}

func (p *Parser) parseArrayDecl() ast.ArrayDecl {
	name := p.consume(lexer.TokenIdent, "expected array name").Lexeme
	p.consume(lexer.TokenLParen, "expected ( in DIM")
	dims := p.parseExprList()
	p.consume(lexer.TokenRParen, "expected )")
	return ast.ArrayDecl{Name: name, Dims: dims}
}

func (p *Parser) parseEraseStmt() ast.Stmt {
	st := &ast.EraseStmt{Names: []string{p.consume(lexer.TokenIdent, "expected array name").Lexeme}}
	for p.match(lexer.TokenComma) {
		st.Names = append(st.Names, p.consume(lexer.TokenIdent, "expected array name").Lexeme)
	}
	return st
}

func (p *Parser) parseDefFnStmt() ast.Stmt {
	var name string
	if p.match(lexer.TokenFn) {
		nameTok := p.consume(lexer.TokenIdent, "expected function name")
		base, _ := splitSuffix(nameTok.Lexeme)
		name = "fn" + strings.ToLower(base)
	} else {
		// DEF FNA(x): the lexer reads FNA as a single identifier.
		nameTok := p.consume(lexer.TokenIdent, "expected FN after DEF")
		base, _ := splitSuffix(nameTok.Lexeme)
		name = strings.ToLower(base)
		if len(name) <= 2 || !strings.HasPrefix(name, "fn") {
			p.errf("expected FN after DEF")
		}
	}
	var params []string
	if p.match(lexer.TokenLParen) {
		if !p.check(lexer.TokenRParen) {
			params = append(params, p.consume(lexer.TokenIdent, "expected parameter").Lexeme)
			for p.match(lexer.TokenComma) {
				params = append(params, p.consume(lexer.TokenIdent, "expected parameter").Lexeme)
			}
		}
		p.consume(lexer.TokenRParen, "expected )")
	}
	p.consume(lexer.TokenEq, "expected = in DEF FN")
	return &ast.DefFnStmt{Name: name, Params: params, Body: p.parseExpr()}
}

func (p *Parser) parseDefTypeStmt() ast.Stmt {
	tok := p.advance()
	var vt values.VarType
	switch tok.Type {
	case lexer.TokenDefInt:
		vt = values.TInteger
	case lexer.TokenDefSng:
		vt = values.TSingle
	case lexer.TokenDefDbl:
		vt = values.TDouble
	case lexer.TokenDefStr:
		vt = values.TString
	}
	st := &ast.DefTypeStmt{Type: vt, Ranges: []ast.LetterRange{p.parseLetterRange()}}
	for p.match(lexer.TokenComma) {
		st.Ranges = append(st.Ranges, p.parseLetterRange())
	}
	return st
}

func (p *Parser) parseLetterRange() ast.LetterRange {
	fromTok := p.consume(lexer.TokenIdent, "expected letter")
	from := upperByte(fromTok.Lexeme[0])
	to := from
	if p.match(lexer.TokenMinus) {
		toTok := p.consume(lexer.TokenIdent, "expected letter")
		to = upperByte(toTok.Lexeme[0])
	}
	return ast.LetterRange{From: from, To: to}
}

func (p *Parser) parseSwapStmt() ast.Stmt {
	a := p.parseLValue()
	p.consume(lexer.TokenComma, "expected , in SWAP")
	return &ast.SwapStmt{A: a, B: p.parseLValue()}
}

func (p *Parser) parseOptionBaseStmt() ast.Stmt {
	p.consume(lexer.TokenBase, "expected BASE after OPTION")
	tok := p.consume(lexer.TokenNumber, "expected 0 or 1")
	return &ast.OptionBaseStmt{Base: int(tok.Number)}
}

func (p *Parser) parseRandomizeStmt() ast.Stmt {
	st := &ast.RandomizeStmt{}
	if !p.atStmtEnd() {
		st.Seed = p.parseExpr()
	}
	return st
}

// --- files -------------------------------------------------------

func classicModeWord(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "I", "INPUT":
		return "INPUT"
	case "O", "OUTPUT":
		return "OUTPUT"
	case "A", "APPEND":
		return "APPEND"
	case "R", "RANDOM":
		return "RANDOM"
	}
	return strings.ToUpper(s)
}

func (p *Parser) parseOpenModeWord() string {
	if p.check(lexer.TokenInput) {
		p.advance()
		return "INPUT"
	}
	tok := p.consume(lexer.TokenIdent, "expected OUTPUT, APPEND, or RANDOM")
	up := strings.ToUpper(tok.Lexeme)
	if up != "OUTPUT" && up != "APPEND" && up != "RANDOM" {
		p.errf("expected OUTPUT, APPEND, or RANDOM, got %s", tok.Lexeme)
	}
	return up
}

// parseOpenStmt handles both the classic `OPEN "mode",#n,"name"[,reclen]`
// and modern `OPEN name FOR mode AS #n [LEN = n]` forms (§4.2), told apart
// by what follows the first expression: a comma means classic, FOR means
// modern.
func (p *Parser) parseOpenStmt() ast.Stmt {
	st := &ast.OpenStmt{}
	first := p.parseExpr()
	if p.match(lexer.TokenComma) {
		st.Classic = true
		if lit, ok := first.(*ast.StringLit); ok {
			st.Mode = classicModeWord(lit.Value)
		} else {
			p.errf("expected a literal mode string in classic OPEN")
		}
		p.consume(lexer.TokenHash, "expected # before file number")
		st.FileNum = p.parseExpr()
		p.consume(lexer.TokenComma, "expected , before file name")
		st.Path = p.parseExpr()
		if p.match(lexer.TokenComma) {
			st.RecLen = p.parseExpr()
		}
		return st
	}
	p.consume(lexer.TokenFor, "expected FOR in OPEN")
	st.Path = first
	st.Mode = p.parseOpenModeWord()
	p.consume(lexer.TokenAs, "expected AS in OPEN")
	p.match(lexer.TokenHash)
	st.FileNum = p.parseExpr()
	if p.check(lexer.TokenIdent) && strings.EqualFold(p.peek().Lexeme, "len") {
		p.advance()
		p.consume(lexer.TokenEq, "expected = after LEN")
		st.RecLen = p.parseExpr()
	}
	return st
}

func (p *Parser) parseCloseStmt() ast.Stmt {
	st := &ast.CloseStmt{}
	if p.atStmtEnd() {
		return st
	}
	p.match(lexer.TokenHash)
	st.Files = append(st.Files, p.parseExpr())
	for p.match(lexer.TokenComma) {
		p.match(lexer.TokenHash)
		st.Files = append(st.Files, p.parseExpr())
	}
	return st
}

func (p *Parser) parseFieldStmt() ast.Stmt {
	st := &ast.FieldStmt{}
	p.match(lexer.TokenHash)
	st.FileNum = p.parseExpr()
	for p.match(lexer.TokenComma) {
		width := p.parseExpr()
		p.consume(lexer.TokenAs, "expected AS in FIELD")
		name := p.consume(lexer.TokenIdent, "expected field variable").Lexeme
		st.Fields = append(st.Fields, ast.FieldDecl{Width: width, VarName: name})
	}
	return st
}

func (p *Parser) parseGetPutStmt(isPut bool) ast.Stmt {
	p.match(lexer.TokenHash)
	fileNum := p.parseExpr()
	var rec ast.Expr
	if p.match(lexer.TokenComma) {
		rec = p.parseExpr()
	}
	if isPut {
		return &ast.PutStmt{FileNum: fileNum, Rec: rec}
	}
	return &ast.GetStmt{FileNum: fileNum, Rec: rec}
}

func (p *Parser) parseLsetRsetStmt(right bool) ast.Stmt {
	target := p.parseLValue()
	p.consume(lexer.TokenEq, "expected = in LSET/RSET")
	return &ast.LsetStmt{Target: target, Value: p.parseExpr(), Right: right}
}

func (p *Parser) parseNameStmt() ast.Stmt {
	oldExpr := p.parseExpr()
	p.consume(lexer.TokenAs, "expected AS in NAME")
	return &ast.NameStmt{Old: oldExpr, New: p.parseExpr()}
}

// --- program control -------------------------------------------------------

func (p *Parser) parseChainStmt() ast.Stmt {
	st := &ast.ChainStmt{}
	if p.match(lexer.TokenMerge) {
		st.Merge = true
	}
	st.Path = p.parseExpr()
	if !p.match(lexer.TokenComma) {
		return st
	}
	if p.check(lexer.TokenNumber) {
		st.Line = p.parseExpr()
	}
	if p.match(lexer.TokenComma) {
		if p.match(lexer.TokenAll) {
			st.All = true
		}
	}
	if p.match(lexer.TokenComma) {
		p.match(lexer.TokenDelete)
		st.Delete = true
		if !p.atStmtEnd() {
			_ = p.parseExpr()
		}
		if p.match(lexer.TokenMinus) {
			_ = p.parseExpr()
		}
	}
	return st
}

func (p *Parser) parseCommonStmt() ast.Stmt {
	st := &ast.CommonStmt{Names: []string{p.consume(lexer.TokenIdent, "expected variable").Lexeme}}
	for p.match(lexer.TokenComma) {
		st.Names = append(st.Names, p.consume(lexer.TokenIdent, "expected variable").Lexeme)
	}
	return st
}

func (p *Parser) parseCallStmt() ast.Stmt {
	name := p.consume(lexer.TokenIdent, "expected procedure name").Lexeme
	st := &ast.CallStmt{Name: name}
	if p.match(lexer.TokenLParen) {
		if !p.check(lexer.TokenRParen) {
			st.Args = p.parseExprList()
		}
		p.consume(lexer.TokenRParen, "expected )")
	}
	return st
}

func (p *Parser) parseRunStmt() ast.Stmt {
	st := &ast.RunStmt{}
	if p.atStmtEnd() {
		return st
	}
	if p.check(lexer.TokenNumber) {
		st.Line = &ast.NumberLit{Value: p.peek().Number}
		p.advance()
		return st
	}
	st.Path = p.parseExpr()
	if p.match(lexer.TokenComma) {
		if p.check(lexer.TokenIdent) && strings.EqualFold(p.peek().Lexeme, "r") {
			p.advance()
			st.R = true
		} else {
			st.Line = p.parseExpr()
		}
	}
	return st
}
