package xmlutils

// XPath expressions evaluated against a single entry fragment whose root
// element is Ntry. xmlpath matches local names, so namespace prefixes on
// the source document do not matter.
const (
	XPathEntryAmount     = "/Ntry/Amt"
	XPathEntryCurrency   = "/Ntry/Amt/@Ccy"
	XPathEntryDirection  = "/Ntry/CdtDbtInd"
	XPathBookingDate     = "/Ntry/BookgDt/Dt"
	XPathBookingDateTime = "/Ntry/BookgDt/DtTm"
	XPathValueDate       = "/Ntry/ValDt/Dt"
	XPathCreditorRef     = "//RmtInf/Strd/CdtrRefInf/Ref"
	XPathUnstructured    = "//RmtInf/Ustrd"
	XPathAddtlEntryInfo  = "/Ntry/AddtlNtryInf"
	XPathAddtlTxInfo     = "//AddtlTxInf"
)
