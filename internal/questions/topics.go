package questions

// TriviaTopics are the AP Macroeconomics topics a trivia question is drawn from
var TriviaTopics = []string{
	"Basic Economic Concepts (Scarcity, Opportunity Cost, PPC)",
	"Supply and Demand",
	"Market Equilibrium",
	"Elasticity (Price, Income, Cross-Price)",
	"Market Failures (Externalities, Public Goods)",
	"Government Intervention (Price Ceilings, Price Floors, Taxes, Subsidies)",
	"Measuring Economic Performance (GDP, Nominal vs. Real GDP, GDP Deflator)",
	"Unemployment (Types, Natural Rate)",
	"Inflation (CPI, Causes, Effects)",
	"Aggregate Demand (AD)",
	"Aggregate Supply (AS - Short-run and Long-run)",
	"Macroeconomic Equilibrium (Short-run and Long-run)",
	"Fiscal Policy (Expansionary, Contractionary, Multipliers)",
	"Monetary Policy (Tools of the Fed, Money Market, Loanable Funds Market)",
	"The Phillips Curve (Short-run and Long-run)",
	"Money, Banking, and Financial Markets (Definition of Money, Banks, Federal Reserve)",
	"Economic Growth (Determinants, Productivity)",
	"International Trade and Finance (Comparative Advantage, Trade Barriers)",
	"Exchange Rates (Appreciation, Depreciation)",
	"Balance of Payments (Current Account, Capital and Financial Account)",
	"Business Cycles",
	"Circular Flow Model",
	"National Income Accounting",
	"Consumer Price Index (CPI) and Inflation Calculation",
	"GDP Deflator vs. CPI",
	"Costs of Inflation (Shoe-leather, Menu Costs, etc.)",
	"Types of Unemployment (Frictional, Structural, Cyclical)",
	"Okun's Law",
	"Classical vs. Keynesian Economics",
	"Marginal Propensity to Consume (MPC) and Save (MPS)",
	"Expenditure Multiplier and Tax Multiplier",
	"Automatic Stabilizers",
	"Government Debt and Deficits",
	"Crowding Out Effect",
	"Functions of Money",
	"Measures of Money Supply (M1, M2)",
	"Bank Balance Sheets and Money Creation",
	"Reserve Requirement and Money Multiplier",
	"Discount Rate and Federal Funds Rate",
	"Open Market Operations",
	"Equation of Exchange (MV=PQ)",
	"Quantity Theory of Money",
	"Nominal vs. Real Interest Rates",
	"Loanable Funds Market (Supply and Demand for Loanable Funds)",
	"Expectations and Macroeconomic Policy",
	"Supply Shocks",
	"Trade Balance (Exports vs. Imports)",
	"Foreign Exchange Market (Supply and Demand for Currencies)",
	"Factors Affecting Exchange Rates",
	"Effects of Exchange Rate Changes on Trade",
}

// EconomicConditions seed cause/effect questions
var EconomicConditions = []string{
	"recessionary gap",
	"inflationary gap",
	"stagflation",
	"full employment with rising inflation",
	"cyclical unemployment",
	"demand-pull inflation",
	"cost-push inflation",
	"economic boom with low unemployment",
	"deflationary pressures",
	"liquidity trap",
	"rapid economic growth leading to resource scarcity",
	"unexpected decrease in consumer confidence",
	"significant increase in oil prices affecting production costs",
}
