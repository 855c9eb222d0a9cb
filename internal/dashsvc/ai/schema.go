package ai

// databaseSchema describes the analytics tables for the model prompt.
// Kept in sync with the warehouse by hand; there is no introspection.
const databaseSchema = `Database Schema:

Table: twba_transactions
Columns:
- InteractionID (text): Unique transaction identifier
- TransactionDate (timestamptz): Date and time of transaction
- txn_date (date): Date of transaction
- txn_month (timestamp): Month of transaction
- txn_weekday (text): Day of week (Monday, Tuesday, etc.)
- txn_hour (integer): Hour of transaction (0-23)
- timeofday_segment (text): Time segment (Morning, Afternoon, Evening, Late Night)
- Gender (text): Original gender value
- gender_clean (text): Cleaned gender value (Male, Female, Unknown)
- Age (integer): Customer age
- age_bucket (text): Age group (18-24, 25-34, 35-44, 45-54, 55+)
- payment_method (text): Payment method (cash, card, etc.)
- basket_total (numeric): Total transaction amount

Table: twba_items
Columns:
- InteractionID (text): Unique transaction identifier (links to twba_transactions)
- TransactionDate (timestamptz): Date and time of transaction
- gender_clean (text): Cleaned gender value
- age_bucket (text): Age group
- Age (integer): Customer age
- transactionContext_paymentMethod_voice (text): Payment method
- totals_totalAmount_voice (numeric): Total transaction amount
- totalPrice (numeric): Total price for this item
- unitPrice (numeric): Unit price of the item
- quantity (numeric): Quantity purchased
- category (text): Product category
- brandName (text): Brand name
- productName (text): Product name
- sku (text): SKU code
- timeofday_segment (text): Time segment
- txn_weekday (text): Day of week
- round_price_flag (text): Flag for rounded prices

Notes:
- Use JOIN on InteractionID to link twba_transactions and twba_items
- All monetary values are in numeric/decimal format
- Dates should be handled with proper PostgreSQL date functions
- Always use LIMIT for large result sets`
